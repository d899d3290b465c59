// Package fact は映画豆知識の取得・生成パイプラインを提供する。
package fact

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/cinefact/internal/metrics"
	"github.com/hitoshi/cinefact/internal/model"
	"github.com/hitoshi/cinefact/internal/repository"
)

// 生成APIに渡すプロンプト。
const systemPrompt = "You are a fun movie fact generator."

// Generator は豆知識テキストの生成インターフェース。
// openai.Clientの部分集合として定義する。
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Sanitizer は生成テキストのサニタイズインターフェース。
// security.ContentSanitizerServiceの部分集合として定義する。
type Sanitizer interface {
	Sanitize(raw string) string
}

// Service は豆知識のキャッシュ参照と新規生成を提供する。
type Service struct {
	factRepo  repository.FactRepository
	generator Generator
	sanitizer Sanitizer
	collector metrics.MetricsCollector
}

// NewService はServiceを生成する。
func NewService(factRepo repository.FactRepository, generator Generator, sanitizer Sanitizer, collector metrics.MetricsCollector) *Service {
	return &Service{
		factRepo:  factRepo,
		generator: generator,
		sanitizer: sanitizer,
		collector: collector,
	}
}

// GetFact はユーザーのお気に入り映画に対する豆知識を返す。
//
// forceNewがfalseの場合、保存済みの最新の豆知識があればそれを無条件に返す
// （鮮度や映画タイトルの一致は判定しない。キャッシュの無効化はクライアントが
// forceNew指定で行う）。キャッシュがない、またはforceNewがtrueの場合は
// 新規生成して保存する。
//
// 生成APIの失敗は外部に出さず、固定のフォールバック文面で代替する。
// 永続化の失敗のみFACT_ERRORとして返す。
func (s *Service) GetFact(ctx context.Context, user *model.User, forceNew bool) (*model.Fact, model.FactSource, error) {
	if !user.HasFavoriteMovie() {
		return nil, "", model.NewNoMovieError()
	}
	movie := user.FavoriteMovie

	if !forceNew {
		cached, err := s.factRepo.FindLatestByUserID(ctx, user.ID)
		if err != nil {
			slog.Error("failed to look up cached fact",
				slog.String("uid", user.UID),
				slog.String("error", err.Error()),
			)
			return nil, "", model.NewFactError()
		}
		if cached != nil {
			s.collector.RecordCacheHit()
			return cached, model.FactSourceCache, nil
		}
	}

	text := s.generate(ctx, user.UID, movie)

	newFact := &model.Fact{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Text:      text,
		CreatedAt: time.Now(),
	}
	if err := s.factRepo.Create(ctx, newFact); err != nil {
		s.collector.RecordGenerationFailure("store_error")
		slog.Error("failed to store fact",
			slog.String("uid", user.UID),
			slog.String("error", err.Error()),
		)
		return nil, "", model.NewFactError()
	}

	return newFact, model.FactSourceGenerated, nil
}

// generate は生成APIを呼び出し、サニタイズ済みの豆知識テキストを返す。
// 失敗時および空応答時はフォールバック文面を返す。エラーは返さない。
func (s *Service) generate(ctx context.Context, uid, movie string) string {
	start := time.Now()
	raw, err := s.generator.Generate(ctx, systemPrompt, userPrompt(movie))
	s.collector.RecordGenerationLatency(time.Since(start))

	if err != nil {
		s.collector.RecordGenerationFailure("api_error")
		slog.Warn("fact generation failed, using fallback",
			slog.String("uid", uid),
			slog.String("error", err.Error()),
		)
		return fallbackFact(movie)
	}

	text := s.sanitizer.Sanitize(raw)
	if text == "" {
		s.collector.RecordGenerationFailure("empty_content")
		slog.Warn("fact generation returned empty content, using fallback",
			slog.String("uid", uid),
		)
		return fallbackFact(movie)
	}

	s.collector.RecordGenerated()
	return text
}

// userPrompt は映画タイトルを埋め込んだユーザープロンプトを返す。
func userPrompt(movie string) string {
	return fmt.Sprintf(`Give a short, fun fact about the movie "%s".`, movie)
}

// fallbackFact は生成失敗時の固定文面を返す。
func fallbackFact(movie string) string {
	return fmt.Sprintf("Fun fact about %s: It is widely loved by movie fans.", movie)
}
