package app

// Command はplaceshareバイナリのサブコマンドを表す。
type Command string

const (
	// CommandServe はPlace/ユーザーAPIを提供するHTTPサーバーを起動する。
	CommandServe Command = "serve"
	// CommandMigrate はusers・places・user_placesのマイグレーションを適用する。
	CommandMigrate Command = "migrate"
	// CommandSweep はどのユーザー・Placeからも参照されていないアップロード画像を削除する。
	CommandSweep Command = "sweep"
	// CommandHealthcheck は起動中サーバーの /health を確認する。
	// シェルのないdistrolessイメージのHEALTHCHECK用。
	CommandHealthcheck Command = "healthcheck"
)

// knownCommands は引数として受け付けるサブコマンド。
var knownCommands = map[string]Command{
	string(CommandServe):       CommandServe,
	string(CommandMigrate):     CommandMigrate,
	string(CommandSweep):       CommandSweep,
	string(CommandHealthcheck): CommandHealthcheck,
}

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}
	if cmd, ok := knownCommands[args[0]]; ok {
		return cmd
	}
	return CommandServe
}

// RequiresConfig は環境変数の設定読み込みが必要かを返す。
// healthcheckはSERVER_PORTのみを参照するため不要。
func (c Command) RequiresConfig() bool {
	return c != CommandHealthcheck
}
