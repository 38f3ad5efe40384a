// Package auth はユーザー登録・ログインとトークンの発行・検証を提供する。
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/recipeman/internal/model"
	"github.com/hitoshi/recipeman/internal/repository"
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	JWTSecret  string
	BcryptCost int           // bcryptのコストパラメータ
	TokenTTL   time.Duration // 発行するトークンの有効期間
}

// DurationRecorder は認証処理（bcrypt）の所要時間を記録するインターフェース。
// bcryptは意図的に低速なため、レイテンシ監視の対象とする。
type DurationRecorder interface {
	RecordAuthDuration(d time.Duration)
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	recorder DurationRecorder
	config   ServiceConfig
}

// NewService はServiceを生成する。recorderはnilでもよい。
func NewService(userRepo repository.UserRepository, recorder DurationRecorder, config ServiceConfig) *Service {
	return &Service{
		userRepo: userRepo,
		recorder: recorder,
		config:   config,
	}
}

// Register は新規ユーザーを登録する。
// パスワードはbcryptでハッシュ化して保存し、平文は保持しない。
// メールアドレスが登録済みの場合はEMAIL_IN_USEを返す。
func (s *Service) Register(ctx context.Context, email, password string) (*model.User, error) {
	if err := validateCredentials(email, password); err != nil {
		return nil, err
	}

	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.config.BcryptCost)
	s.record(time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
	)

	return user, nil
}

// Login は認証情報を検証し、署名付きトークンを発行する。
// ユーザーが存在しない場合もパスワード不一致の場合も同じ
// INVALID_CREDENTIALSを返し、どちらが誤っているかを明かさない。
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return "", model.NewInvalidCredentialsError()
	}

	start := time.Now()
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	s.record(time.Since(start))
	if err != nil {
		return "", model.NewInvalidCredentialsError()
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}

	return token, nil
}

// ValidateToken はトークンの署名と有効期限を検証し、ユーザーIDを返す。
// 不正なトークンにはエラーを返す（呼び出し側で401に変換される）。
func (s *Service) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// アルゴリズム混同攻撃の防止: HMAC以外の署名方式は拒否する
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("token has no user_id claim")
	}

	return userID, nil
}

// issueToken はuser_idクレームと有効期限を持つHS256署名トークンを生成する。
func (s *Service) issueToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(s.config.TokenTTL).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}

func (s *Service) record(d time.Duration) {
	if s.recorder != nil {
		s.recorder.RecordAuthDuration(d)
	}
}

// validateCredentials は登録時の入力を検証する。
func validateCredentials(email, password string) error {
	if email == "" || !strings.Contains(email, "@") {
		return model.NewValidationError("メールアドレスの形式が正しくありません")
	}
	if len(password) < 8 {
		return model.NewValidationError("パスワードは8文字以上にしてください")
	}
	return nil
}
