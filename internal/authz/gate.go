// Package authz はリソース所有者の認可判定を提供する。
package authz

import "github.com/hitoshi/recipeman/internal/model"

// Authorize は呼び出し元がリソース所有者と一致するか判定する。
// 副作用もI/Oも持たない純粋な判定であり、一致しない場合はFORBIDDENを返す。
// 呼び出し側はこのエラーを未検出（404）と混同してはならない。
func Authorize(callerID, ownerID string) error {
	if callerID == "" || callerID != ownerID {
		return model.NewForbiddenError()
	}
	return nil
}
