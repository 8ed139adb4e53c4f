// Package policy はメールアドレスの許可リストとロール割り当てを提供する。
// 許可リストは起動時に設定から構築されるイミュータブルなマッピングで、
// サインインのたびに参照される。リストにないメールは常に拒否を意味する。
package policy

import (
	"fmt"
	"strings"

	"github.com/pudaweed/clubman/internal/model"
)

// Policy は検証済みメールアドレスからロールへの固定マッピング。
// 生成後に変更されることはない。キーの照合は大文字小文字を区別する
// 完全一致で行う（IdPが返すメールの大文字小文字が揺れると正規メンバーでも
// 拒否され得る点は既知の制約として残している）。
type Policy struct {
	roles map[string]model.Role
}

// New は許可リストからPolicyを生成する。
// 渡されたマップはコピーされるため、呼び出し側での変更は反映されない。
// 不正なロール値が含まれる場合はエラーを返す。
func New(allowed map[string]model.Role) (*Policy, error) {
	roles := make(map[string]model.Role, len(allowed))
	for email, role := range allowed {
		if email == "" {
			return nil, fmt.Errorf("allow-list contains an empty email")
		}
		if !role.Valid() {
			return nil, fmt.Errorf("allow-list contains an invalid role %q for %s", role, email)
		}
		roles[email] = role
	}
	return &Policy{roles: roles}, nil
}

// Parse は "email:role,email:role" 形式の文字列からPolicyを生成する。
// 環境変数ALLOWED_USERSの値をそのまま渡すことを想定している。
// 例: "capitan@club.cl:both,jugador@club.cl:player"
func Parse(s string) (*Policy, error) {
	allowed := make(map[string]model.Role)
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		email, role, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("invalid allow-list entry %q: expected email:role", entry)
		}
		email = strings.TrimSpace(email)
		if _, dup := allowed[email]; dup {
			return nil, fmt.Errorf("duplicate allow-list entry for %s", email)
		}
		allowed[email] = model.Role(strings.TrimSpace(role))
	}
	return New(allowed)
}

// ResolveRole はメールアドレスに対応するロールを返す。
// リストに存在しない場合はokがfalseとなり、呼び出し側は拒否として扱う。
func (p *Policy) ResolveRole(email string) (model.Role, bool) {
	role, ok := p.roles[email]
	return role, ok
}

// Len は許可リストのエントリ数を返す。
func (p *Policy) Len() int {
	return len(p.roles)
}
