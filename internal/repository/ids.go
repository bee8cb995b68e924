package repository

import "github.com/google/uuid"

// validID はidがUUIDとして解釈できるかを返す。
// 不正な形式のIDは存在しない行として扱う。
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
