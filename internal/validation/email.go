package validation

import "strings"

var (
	icloudDomains = map[string]bool{"icloud.com": true, "me.com": true}
	yahooDomains  = map[string]bool{
		"rocketmail.com": true, "yahoo.ca": true, "yahoo.co.uk": true, "yahoo.com": true,
		"yahoo.de": true, "yahoo.fr": true, "yahoo.in": true, "yahoo.it": true, "ymail.com": true,
	}
	yandexDomains = map[string]bool{
		"yandex.ru": true, "yandex.ua": true, "yandex.kz": true,
		"yandex.com": true, "yandex.by": true, "ya.ru": true,
	}
)

// NormalizeEmail はメールアドレスを正規化する。
//
//   - ドメインとローカル部を小文字化する
//   - googlemail.comはgmail.comに統一し、gmailではドットと+以降を除去する
//   - iCloudとOutlook系は+以降、Yahoo系は最後の-以降を除去する
//   - Yandex系のドメインはyandex.ruに統一する
//
// @を含まない場合は小文字化のみ行う。
func NormalizeEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return strings.ToLower(email)
	}
	local := strings.ToLower(email[:at])
	domain := strings.ToLower(email[at+1:])

	switch {
	case domain == "gmail.com" || domain == "googlemail.com":
		user := cutSubaddress(local, "+")
		user = strings.ReplaceAll(user, ".", "")
		if user == "" {
			return local + "@" + domain
		}
		return user + "@gmail.com"
	case icloudDomains[domain], isOutlookDomain(domain):
		local = cutSubaddress(local, "+")
	case yahooDomains[domain]:
		if i := strings.LastIndex(local, "-"); i > 0 {
			local = local[:i]
		}
	case yandexDomains[domain]:
		domain = "yandex.ru"
	}

	return local + "@" + domain
}

func cutSubaddress(local, sep string) string {
	if i := strings.Index(local, sep); i >= 0 {
		return local[:i]
	}
	return local
}

func isOutlookDomain(domain string) bool {
	if domain == "msn.com" || domain == "passport.com" {
		return true
	}
	for _, prefix := range []string{"hotmail.", "live.", "outlook."} {
		if strings.HasPrefix(domain, prefix) {
			return true
		}
	}
	return false
}
