// Package conversation implements the menu-driven chat dialogue used by the bot front-end.
// Dialogue state lives in a SessionStore so any API replica can continue a flow.
package conversation

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pageza/ai-book/backend/internal/logging"
	"github.com/pageza/ai-book/backend/internal/metrics"
	"github.com/pageza/ai-book/backend/internal/service"
	"github.com/pageza/ai-book/backend/internal/types"
)

// Reply is what the front-end shows for one incoming message
type Reply struct {
	Text     string
	Books    []types.Recommendation
	Degraded bool
}

// command is a recognised top-level input; it always wins over a pending step
type command int

const (
	cmdNone command = iota
	cmdStart
	cmdCancel
	cmdProfile
	cmdRecommendations
	cmdQuiz
)

var commands = map[string]command{
	"/start":              cmdStart,
	"/cancel":             cmdCancel,
	"/profile":            cmdProfile,
	"profile":             cmdProfile,
	ButtonProfile:         cmdProfile,
	"/recommendations":    cmdRecommendations,
	"recommendations":     cmdRecommendations,
	ButtonRecommendations: cmdRecommendations,
	"/quiz":               cmdQuiz,
	"quiz":                cmdQuiz,
	ButtonQuiz:            cmdQuiz,
}

func parseCommand(text string) command {
	if cmd, ok := commands[text]; ok {
		return cmd
	}
	return commands[strings.ToLower(text)]
}

// Limiter counts one recommendation request for key against a budget
type Limiter interface {
	IsAllowed(ctx context.Context, key string) (bool, int, time.Time, error)
}

// Flow drives the recommendation wizard, the quiz and the profile view
type Flow struct {
	sessions        SessionStore
	recommendations service.IRecommendationService
	profiles        service.IProfileService
	quizzes         service.IQuizService
	limiter         Limiter
	log             zerolog.Logger
}

// NewFlow creates a Flow
func NewFlow(sessions SessionStore, recs service.IRecommendationService, profiles service.IProfileService, quizzes service.IQuizService) *Flow {
	return &Flow{
		sessions:        sessions,
		recommendations: recs,
		profiles:        profiles,
		quizzes:         quizzes,
		log:             logging.With("conversation"),
	}
}

// WithLimiter makes every model call from the flow count against limiter under the user id.
// Pass the HTTP recommendations limiter so both entry points share one budget.
func (f *Flow) WithLimiter(limiter Limiter) *Flow {
	f.limiter = limiter
	return f
}

// Handle processes one message from userID. Errors are returned only when
// dialogue state cannot be read or written; provider failures become reply text.
func (f *Flow) Handle(ctx context.Context, userID int64, text string) (Reply, error) {
	text = strings.TrimSpace(text)

	switch parseCommand(text) {
	case cmdStart:
		return Reply{Text: msgGreeting}, f.reset(ctx, userID)
	case cmdCancel:
		return Reply{Text: msgCancelled}, f.reset(ctx, userID)
	case cmdProfile:
		return f.showProfile(ctx, userID), nil
	case cmdRecommendations:
		return f.startRecommendations(ctx, userID)
	case cmdQuiz:
		return f.startQuiz(ctx, userID)
	}

	session, err := f.sessions.Get(ctx, userID)
	if err != nil {
		return Reply{}, err
	}
	if session == nil {
		return Reply{Text: msgMenuHint}, nil
	}

	switch session.Step {
	case StepBooks:
		session.Favorites = splitAnswer(text)
		session.Step = StepGenres
		return Reply{Text: msgAskGenres}, f.sessions.Put(ctx, userID, session)
	case StepGenres:
		session.Genres = splitAnswer(text)
		session.Step = StepAuthors
		return Reply{Text: msgAskAuthors}, f.sessions.Put(ctx, userID, session)
	case StepAuthors:
		session.Authors = splitAnswer(text)
		return f.finishWizard(ctx, userID, session)
	case StepFavoriteBook:
		if text == "" {
			return Reply{Text: msgAskFavorite}, nil
		}
		session.FavoriteBook = text
		session.Step = StepBooksPerYear
		return Reply{Text: msgAskBooksPerYr}, f.sessions.Put(ctx, userID, session)
	case StepBooksPerYear:
		n, err := strconv.Atoi(text)
		if err != nil || n < 0 {
			return Reply{Text: msgNeedNumber}, nil
		}
		return f.finishQuiz(ctx, userID, session, n)
	default:
		// unknown step from an older deployment
		return Reply{Text: msgMenuHint}, f.sessions.Delete(ctx, userID)
	}
}

func (f *Flow) reset(ctx context.Context, userID int64) error {
	session, err := f.sessions.Get(ctx, userID)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}
	metrics.ConversationSessionsTotal.WithLabelValues(string(session.Flow), "cancelled").Inc()
	return f.sessions.Delete(ctx, userID)
}

func (f *Flow) showProfile(ctx context.Context, userID int64) Reply {
	profile, err := f.profiles.GetProfile(ctx, userID)
	if errors.Is(err, service.ErrNotFound) {
		return Reply{Text: msgProfileEmpty}
	}
	if err != nil {
		f.log.Error().Err(err).Int64("user_id", userID).Msg("failed to load profile")
		return Reply{Text: msgProfileFailed}
	}
	return Reply{Text: RenderProfile(profile)}
}

// startRecommendations answers right away from stored answers, or opens the wizard
func (f *Flow) startRecommendations(ctx context.Context, userID int64) (Reply, error) {
	if err := f.reset(ctx, userID); err != nil {
		return Reply{}, err
	}

	prefs := f.storedPreferences(ctx, userID)
	if !prefs.IsEmpty() {
		reply, ok := f.recommend(ctx, userID, prefs)
		if ok && (len(prefs.Genres) > 0 || len(prefs.Authors) > 0) {
			f.savePreferences(ctx, userID, prefs)
		}
		return reply, nil
	}

	metrics.ConversationSessionsTotal.WithLabelValues(string(FlowRecommend), "started").Inc()
	return Reply{Text: msgAskBooks}, f.sessions.Put(ctx, userID, &Session{Flow: FlowRecommend, Step: StepBooks})
}

// storedPreferences reads the quiz favorite and profile lists; lookup failures count as empty
func (f *Flow) storedPreferences(ctx context.Context, userID int64) types.Preferences {
	var prefs types.Preferences

	quiz, err := f.quizzes.GetQuiz(ctx, userID)
	switch {
	case err == nil && quiz.FavoriteBook != "":
		prefs.Favorites = []string{quiz.FavoriteBook}
	case err != nil && !errors.Is(err, service.ErrNotFound):
		f.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to load quiz answers")
	}

	profile, err := f.profiles.GetProfile(ctx, userID)
	switch {
	case err == nil:
		prefs.Genres = profile.PreferredGenres
		prefs.Authors = profile.PreferredAuthors
	case !errors.Is(err, service.ErrNotFound):
		f.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to load profile")
	}
	return prefs
}

func (f *Flow) finishWizard(ctx context.Context, userID int64, session *Session) (Reply, error) {
	if err := f.sessions.Delete(ctx, userID); err != nil {
		return Reply{}, err
	}
	metrics.ConversationSessionsTotal.WithLabelValues(string(FlowRecommend), "completed").Inc()

	prefs := types.Preferences{Favorites: session.Favorites, Genres: session.Genres, Authors: session.Authors}
	reply, ok := f.recommend(ctx, userID, prefs)
	if ok {
		f.savePreferences(ctx, userID, prefs)
	}
	return reply, nil
}

// recommend reports ok when books were produced
func (f *Flow) recommend(ctx context.Context, userID int64, prefs types.Preferences) (Reply, bool) {
	if f.limiter != nil {
		allowed, _, _, err := f.limiter.IsAllowed(ctx, strconv.FormatInt(userID, 10))
		switch {
		case err != nil:
			f.log.Warn().Err(err).Int64("user_id", userID).Msg("rate limit check failed")
		case !allowed:
			metrics.RateLimitedTotal.Inc()
			return Reply{Text: msgRateLimited}, false
		}
	}

	set, err := f.recommendations.Recommend(ctx, prefs)
	if err != nil {
		f.log.Warn().Err(err).Int64("user_id", userID).Msg("recommendation failed in conversation")
		return Reply{Text: msgRecommendError}, false
	}
	if len(set.Items) == 0 {
		return Reply{Text: msgNothingToShow}, false
	}
	return Reply{Text: RenderBooks(set.Items), Books: set.Items, Degraded: set.Degraded}, true
}

// savePreferences stores genres and authors on the profile; failures are logged only
func (f *Flow) savePreferences(ctx context.Context, userID int64, prefs types.Preferences) {
	input := &types.ProfileInput{
		PreferredGenres:  nonNil(prefs.Genres),
		PreferredAuthors: nonNil(prefs.Authors),
	}
	if _, err := f.profiles.UpsertProfile(ctx, userID, input); err != nil {
		f.log.Warn().Err(err).Int64("user_id", userID).Msg("failed to save preferences to profile")
	}
}

func (f *Flow) startQuiz(ctx context.Context, userID int64) (Reply, error) {
	if err := f.reset(ctx, userID); err != nil {
		return Reply{}, err
	}
	metrics.ConversationSessionsTotal.WithLabelValues(string(FlowQuiz), "started").Inc()
	return Reply{Text: msgAskFavorite}, f.sessions.Put(ctx, userID, &Session{Flow: FlowQuiz, Step: StepFavoriteBook})
}

func (f *Flow) finishQuiz(ctx context.Context, userID int64, session *Session, booksPerYear int) (Reply, error) {
	if err := f.sessions.Delete(ctx, userID); err != nil {
		return Reply{}, err
	}
	metrics.ConversationSessionsTotal.WithLabelValues(string(FlowQuiz), "completed").Inc()

	_, err := f.quizzes.SaveQuiz(ctx, userID, &types.QuizInput{FavoriteBook: session.FavoriteBook, BooksPerYear: &booksPerYear})
	if err != nil {
		f.log.Error().Err(err).Int64("user_id", userID).Msg("failed to save quiz answers")
		return Reply{Text: msgQuizSaveFailed}, nil
	}
	return Reply{Text: msgQuizDone}, nil
}

// splitAnswer reads a comma-separated answer; a lone "-" means none
func splitAnswer(text string) []string {
	if text == "-" {
		return []string{}
	}
	parts := strings.Split(text, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
