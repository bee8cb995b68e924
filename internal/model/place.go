// Package model はドメインモデルを定義する。
package model

import "time"

// Location はジオコーディング済みの座標を表す。
type Location struct {
	Lat float64
	Lng float64
}

// Place はユーザーが登録した地点を表す。
// CreatorIDは作成後に変更しない。
type Place struct {
	ID          string
	Title       string
	Description string
	Address     string
	Location    Location
	Image       string
	CreatorID   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
