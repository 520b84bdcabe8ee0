// Package subscriber は購読フォームの入力値を検証する。
// ネットワークやストレージにはアクセスしない純粋関数のみを提供する。
package subscriber

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength は名前の最大文字数（rune数）。
const MaxNameLength = 256

// ForbiddenNameCharacters は名前に含めることのできない記号。
// これに加えて制御文字（unicode.IsControl）と書式文字（Unicode Cf）も拒否する。
const ForbiddenNameCharacters = `/()"<>\{}`

// 名前のバリデーションエラー
var (
	ErrNameEmpty          = errors.New("name is empty")
	ErrNameTooLong        = fmt.Errorf("name exceeds %d characters", MaxNameLength)
	ErrNameForbiddenChars = errors.New("name contains forbidden characters")
)

// メールアドレスのバリデーションエラー
var (
	ErrEmailEmpty       = errors.New("email is empty")
	ErrEmailWhitespace  = errors.New("email contains whitespace or control characters")
	ErrEmailAtSign      = errors.New("email must contain exactly one @")
	ErrEmailLocalPart   = errors.New("email local part is empty")
	ErrEmailDomain      = errors.New("email domain is invalid")
	ErrEmailDomainNoDot = errors.New("email domain must contain a dot")
)

// Field はバリデーションに失敗したフィールドを表す。
type Field string

const (
	FieldName  Field = "name"
	FieldEmail Field = "email"
)

// ValidationError はフィールド単位のバリデーションエラー。
type ValidationError struct {
	Field Field
	Err   error
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

// Unwrap は原因となったエラーを返す。
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Input は検証済みの購読フォーム入力。
type Input struct {
	Name  string
	Email string
}

// Validate は名前とメールアドレスを検証し、検証済みの入力を返す。
// 名前は前後の空白を除去した値を返す。名前を先に検証する。
func Validate(name, email string) (Input, error) {
	n, err := ValidateName(name)
	if err != nil {
		return Input{}, &ValidationError{Field: FieldName, Err: err}
	}

	e, err := ValidateEmail(email)
	if err != nil {
		return Input{}, &ValidationError{Field: FieldEmail, Err: err}
	}

	return Input{Name: n, Email: e}, nil
}

// ValidateName は名前を検証し、前後の空白を除去した値を返す。
func ValidateName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", ErrNameEmpty
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrNameTooLong
	}

	for _, r := range name {
		if isForbiddenNameRune(r) {
			return "", ErrNameForbiddenChars
		}
	}

	return name, nil
}

// isForbiddenNameRune は名前に使用できない文字かどうかを判定する。
func isForbiddenNameRune(r rune) bool {
	if r == utf8.RuneError {
		return true
	}
	if strings.ContainsRune(ForbiddenNameCharacters, r) {
		return true
	}
	return unicode.IsControl(r) || unicode.Is(unicode.Cf, r)
}

// ValidateEmail はメールアドレスの構文を検証する。
// local-part@domain の形式で、@はちょうど1つ、ドメインは空でないラベルを
// ドットで区切った2つ以上の要素からなる必要がある。空白・制御文字は許可しない。
func ValidateEmail(raw string) (string, error) {
	if raw == "" {
		return "", ErrEmailEmpty
	}

	for _, r := range raw {
		if r == utf8.RuneError || unicode.IsSpace(r) || unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return "", ErrEmailWhitespace
		}
	}

	if strings.Count(raw, "@") != 1 {
		return "", ErrEmailAtSign
	}

	local, domain, _ := strings.Cut(raw, "@")
	if local == "" {
		return "", ErrEmailLocalPart
	}
	if domain == "" {
		return "", ErrEmailDomain
	}
	if !strings.Contains(domain, ".") {
		return "", ErrEmailDomainNoDot
	}
	for _, label := range strings.Split(domain, ".") {
		if label == "" {
			return "", ErrEmailDomain
		}
	}

	return raw, nil
}
