package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// EditState はお気に入り映画編集UIの状態を表す。
type EditState string

const (
	// StateViewing は表示中（編集フォーム非表示）。
	StateViewing EditState = "viewing"
	// StateEditing は編集フォーム表示中。
	StateEditing EditState = "editing"
	// StateSaving はサーバー保存中（楽観的反映済み、再送不可）。
	StateSaving EditState = "saving"
)

// 編集フォームのクライアント側検証（サーバーと同一の制約）。
const (
	editMovieMinLen = 2
	editMovieMaxLen = 100
)

// validationMessage はクライアント側検証のインラインエラーメッセージ。
const validationMessage = "Favorite movie must be between 2 and 100 characters"

// MovieAPI はコントローラーが必要とするAPI操作。
// Clientの部分集合として定義する。
type MovieAPI interface {
	UpdateMovie(ctx context.Context, movie string) (string, error)
	GetFact(ctx context.Context, forceNew bool) (*FactResult, error)
}

// MovieEditController はお気に入り映画の編集フローを管理する。
//
// 状態遷移:
//
//	Viewing → StartEdit → Editing → Submit → Saving → 成功 → Viewing
//	                                              → 失敗 → Editing（入力維持・ロールバック済み）
//
// 保存中は楽観的更新としてプロフィールに新タイトルを即時反映し、
// サーバーエラー時はプロフィールと入力欄を変更前の値に巻き戻す。
// 保存成功でタイトルが実際に変わった場合のみ、旧・新タイトルの
// 豆知識キャッシュを無効化し、新タイトルの豆知識を先回りで再生成する。
type MovieEditController struct {
	api     MovieAPI
	profile *Profile

	state       EditState
	draft       string
	inlineError string
	lastError   *APIError

	// 楽観的更新のロールバック用
	previousMovie *string

	// 映画タイトルをキーにした豆知識キャッシュ
	factCache map[string]*FactResult
}

// NewMovieEditController はMovieEditControllerを生成する。
// profileは取得済みのプロフィールスナップショット。
func NewMovieEditController(api MovieAPI, profile *Profile) *MovieEditController {
	return &MovieEditController{
		api:       api,
		profile:   profile,
		state:     StateViewing,
		factCache: make(map[string]*FactResult),
	}
}

// State は現在の編集状態を返す。
func (c *MovieEditController) State() EditState {
	return c.state
}

// Profile は現在のプロフィールスナップショットを返す。
// 保存中は楽観的に更新された値が見える。
func (c *MovieEditController) Profile() *Profile {
	return c.profile
}

// Draft は編集フォームの入力値を返す。
func (c *MovieEditController) Draft() string {
	return c.draft
}

// InlineError はクライアント側検証のエラーメッセージを返す。空なら検証エラーなし。
func (c *MovieEditController) InlineError() string {
	return c.inlineError
}

// LastError は直近のサーバーエラーを返す。成功後はnilに戻る。
func (c *MovieEditController) LastError() *APIError {
	return c.lastError
}

// CachedFact はタイトルに対応するキャッシュ済み豆知識を返す。
func (c *MovieEditController) CachedFact(movie string) *FactResult {
	return c.factCache[movie]
}

// StartEdit は編集フォームを開く。現在値を初期入力として設定する。
// 表示中以外からは開始できない。
func (c *MovieEditController) StartEdit() error {
	if c.state != StateViewing {
		return fmt.Errorf("cannot start editing in state %q", c.state)
	}
	c.state = StateEditing
	c.inlineError = ""
	if c.profile.FavoriteMovie != nil {
		c.draft = *c.profile.FavoriteMovie
	} else {
		c.draft = ""
	}
	return nil
}

// SetDraft は編集フォームの入力値を更新する。
func (c *MovieEditController) SetDraft(value string) {
	if c.state == StateEditing {
		c.draft = value
		c.inlineError = ""
	}
}

// Cancel は編集を破棄して表示中に戻る。保存中はキャンセルできない。
func (c *MovieEditController) Cancel() error {
	if c.state != StateEditing {
		return fmt.Errorf("cannot cancel in state %q", c.state)
	}
	c.state = StateViewing
	c.draft = ""
	c.inlineError = ""
	return nil
}

// Submit は入力値を検証して保存する。
//
// クライアント側検証に失敗した場合はサーバーに送信せず、
// 編集状態のままインラインエラーを設定する。
// 検証を通過すると楽観的更新を反映して保存中に遷移し、
// サーバー応答に応じて確定またはロールバックする。
// 保存中の再送は拒否する。
func (c *MovieEditController) Submit(ctx context.Context) error {
	if c.state == StateSaving {
		return errors.New("submit already in progress")
	}
	if c.state != StateEditing {
		return fmt.Errorf("cannot submit in state %q", c.state)
	}

	// 1. クライアント側検証（サーバーと同一ルール）
	trimmed := strings.TrimSpace(c.draft)
	if n := utf8.RuneCountInString(trimmed); n < editMovieMinLen || n > editMovieMaxLen {
		c.inlineError = validationMessage
		return nil
	}

	// 2. 楽観的更新を反映して保存中へ
	c.previousMovie = c.profile.FavoriteMovie
	c.profile = ApplyOptimisticMovie(c.profile, trimmed)
	c.state = StateSaving
	c.inlineError = ""
	c.lastError = nil

	// 3. サーバー保存
	canonical, err := c.api.UpdateMovie(ctx, trimmed)
	if err != nil {
		// 失敗: プロフィールと入力欄を変更前の値に巻き戻して編集状態に戻る
		c.profile = RollbackMovie(c.profile, c.previousMovie)
		if c.previousMovie != nil {
			c.draft = *c.previousMovie
		} else {
			c.draft = ""
		}
		c.previousMovie = nil
		c.state = StateEditing
		c.lastError = normalizeError(err)
		return nil
	}

	// 4. 成功: サーバーの正規化値で確定
	oldMovie := ""
	if c.previousMovie != nil {
		oldMovie = *c.previousMovie
	}
	next := *c.profile
	next.FavoriteMovie = &canonical
	c.profile = &next
	c.previousMovie = nil
	c.state = StateViewing
	c.draft = ""

	// 5. タイトルが実際に変わった場合のみ、旧・新タイトルの豆知識キャッシュを
	// 無効化し、新タイトルの豆知識を先回りで再生成する
	// （先回り取得の失敗は保存結果に影響しない）
	if oldMovie != canonical {
		delete(c.factCache, oldMovie)
		delete(c.factCache, canonical)
		if fresh, factErr := c.api.GetFact(ctx, true); factErr == nil {
			c.factCache[canonical] = fresh
		}
	}

	return nil
}

// normalizeError は任意のエラーをAPIErrorに正規化する。
// ネットワークエラー等の非APIエラーはUNKNOWN_ERRORとして扱う。
func normalizeError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return &APIError{
		Code:    ErrCodeUnknown,
		Message: unknownErrorMessage,
	}
}
