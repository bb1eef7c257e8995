package service

import (
	"context"
	"math/rand"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/config"
	"github.com/zata-zhangtao/SideBySide/internal/domain"
	"github.com/zata-zhangtao/SideBySide/internal/dto"
	"github.com/zata-zhangtao/SideBySide/internal/logger"
	"github.com/zata-zhangtao/SideBySide/internal/repository"
	"github.com/zata-zhangtao/SideBySide/internal/repository/models"
	"github.com/zata-zhangtao/SideBySide/internal/util"

	"go.uber.org/zap"
)

// SessionService handles the quiz session lifecycle: creation, prompting,
// grading and per-session aggregates.
type SessionService interface {
	Create(ctx context.Context, creatorID string, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, requesterID, sessionID string) (*dto.SessionResponse, error)
	List(ctx context.Context, requesterID string, createdByMe bool) ([]dto.SessionResponse, error)
	NextWord(ctx context.Context, requesterID, sessionID, direction string, reset bool) (*dto.NextWordResponse, error)
	SubmitAttempt(ctx context.Context, requesterID, sessionID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error)
	Scoreboard(ctx context.Context, requesterID, sessionID string) (*dto.ScoreboardResponse, error)
	Progress(ctx context.Context, requesterID, sessionID string) (*dto.ProgressResponse, error)
	Wrongbook(ctx context.Context, requesterID, sessionID string) ([]dto.WrongbookEntry, error)
	SetStatus(ctx context.Context, requesterID, sessionID, status string) (*dto.SessionResponse, error)
	Delete(ctx context.Context, requesterID, sessionID string) error
}

type sessionService struct {
	sessionRepo  repository.SessionRepository
	wordlistRepo repository.WordlistRepository
	userRepo     repository.UserRepository
	txManager    domain.TransactionManager
	judge        domain.DefinitionJudge
	judgeCfg     config.JudgeConfig
	rng          *rand.Rand
}

// NewSessionService creates a new SessionService. judge may be nil;
// grading then relies on exact matching alone.
func NewSessionService(
	sessionRepo repository.SessionRepository,
	wordlistRepo repository.WordlistRepository,
	userRepo repository.UserRepository,
	txManager domain.TransactionManager,
	judge domain.DefinitionJudge,
	judgeCfg config.JudgeConfig,
) SessionService {
	return &sessionService{
		sessionRepo:  sessionRepo,
		wordlistRepo: wordlistRepo,
		userRepo:     userRepo,
		txManager:    txManager,
		judge:        judge,
		judgeCfg:     judgeCfg,
		rng:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create builds a session between the creator and a friend over one of
// the creator's wordlists. The practice pool is sampled once here and
// never changes afterwards. Adding the named user as a friend first is
// not required; the link is created on the fly when missing.
func (s *sessionService) Create(ctx context.Context, creatorID string, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	wl, err := s.wordlistRepo.GetWordlistByID(ctx, req.WordlistID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load wordlist", err)
	}
	if wl == nil {
		return nil, domain.NewNotFoundError("wordlist not found")
	}
	if wl.OwnerID != creatorID {
		return nil, domain.NewPermissionError("wordlist belongs to another user")
	}

	friend, err := s.userRepo.GetUserByUsername(ctx, req.FriendUsername)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up friend", err)
	}
	if friend == nil {
		return nil, domain.NewNotFoundError("no user with that username")
	}

	zh2enRatio := domain.DefaultZh2EnRatio
	if req.Zh2EnRatio != nil {
		zh2enRatio = *req.Zh2EnRatio
	}
	practiceRatio := domain.DefaultPracticeRatio
	if req.PracticeRatio != nil {
		practiceRatio = *req.PracticeRatio
	}

	sess := &domain.Session{
		WordlistID:    req.WordlistID,
		CreatedBy:     creatorID,
		UserAID:       creatorID,
		UserBID:       friend.ID,
		Status:        domain.SessionStatusActive,
		Zh2EnRatio:    zh2enRatio,
		PracticeRatio: practiceRatio,
	}
	if err := sess.Validate(); err != nil {
		return nil, err
	}

	wordIDs, err := s.wordlistRepo.ListWordIDs(ctx, req.WordlistID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load words", err)
	}
	if len(wordIDs) == 0 {
		return nil, domain.NewValidationError("wordlist has no words")
	}
	pool := s.samplePool(wordIDs, practiceRatio)

	row := &models.StudySession{
		ID:            util.NewULID(),
		WordlistID:    req.WordlistID,
		CreatedBy:     creatorID,
		UserAID:       creatorID,
		UserBID:       friend.ID,
		Status:        domain.SessionStatusActive,
		Zh2EnRatio:    zh2enRatio,
		PracticeRatio: practiceRatio,
		PracticePool:  pool,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		linked, err := s.userRepo.FriendshipExists(txCtx, creatorID, friend.ID)
		if err != nil {
			return err
		}
		if !linked {
			forward := &models.Friendship{ID: util.NewULID(), UserID: creatorID, FriendID: friend.ID}
			if err := s.userRepo.CreateFriendship(txCtx, forward); err != nil {
				return err
			}
			backward := &models.Friendship{ID: util.NewULID(), UserID: friend.ID, FriendID: creatorID}
			if err := s.userRepo.CreateFriendship(txCtx, backward); err != nil {
				return err
			}
		}
		return s.sessionRepo.CreateSession(txCtx, row)
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to create session", err)
	}

	logger.Get().Info("Session created",
		zap.String("session_id", row.ID),
		zap.String("wordlist_id", row.WordlistID),
		zap.Int("pool_size", len(pool)))
	return s.toSessionResponse(ctx, row), nil
}

// samplePool picks ceil(n*ratio/100) distinct word IDs.
func (s *sessionService) samplePool(wordIDs []string, practiceRatio int) []string {
	k := (len(wordIDs)*practiceRatio + 99) / 100
	if k > len(wordIDs) {
		k = len(wordIDs)
	}
	shuffled := make([]string, len(wordIDs))
	copy(shuffled, wordIDs)
	s.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:k]
}

func (s *sessionService) Get(ctx context.Context, requesterID, sessionID string) (*dto.SessionResponse, error) {
	sess, err := s.loadForParticipant(ctx, requesterID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.toSessionResponse(ctx, sess), nil
}

func (s *sessionService) List(ctx context.Context, requesterID string, createdByMe bool) ([]dto.SessionResponse, error) {
	var rows []models.StudySession
	var err error
	if createdByMe {
		rows, err = s.sessionRepo.ListSessionsByCreator(ctx, requesterID)
	} else {
		rows, err = s.sessionRepo.ListSessionsByParticipant(ctx, requesterID)
	}
	if err != nil {
		return nil, domain.NewInternalError("failed to list sessions", err)
	}

	out := make([]dto.SessionResponse, 0, len(rows))
	for i := range rows {
		out = append(out, *s.toSessionResponse(ctx, &rows[i]))
	}
	return out, nil
}

// NextWord picks a word from the practice pool the requester has not yet
// answered correctly in the resolved direction. reset ignores that
// bookkeeping so the client can cycle through the pool again. When no
// candidate remains the response carries exhausted=true instead of a
// prompt.
func (s *sessionService) NextWord(ctx context.Context, requesterID, sessionID, direction string, reset bool) (*dto.NextWordResponse, error) {
	sess, err := s.loadForParticipant(ctx, requesterID, sessionID)
	if err != nil {
		return nil, err
	}

	dir, err := domain.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	if dir == domain.DirectionRandom {
		if s.rng.Intn(100) < sess.Zh2EnRatio {
			dir = domain.DirectionZh2En
		} else {
			dir = domain.DirectionEn2Zh
		}
	}

	candidates := append([]string(nil), sess.PracticePool...)
	if !reset {
		done, err := s.sessionRepo.GetCorrectWordIDs(ctx, sessionID, requesterID, string(dir))
		if err != nil {
			return nil, domain.NewInternalError("failed to load answered words", err)
		}
		doneSet := make(map[string]struct{}, len(done))
		for _, id := range done {
			doneSet[id] = struct{}{}
		}
		remaining := candidates[:0]
		for _, id := range candidates {
			if _, ok := doneSet[id]; !ok {
				remaining = append(remaining, id)
			}
		}
		candidates = remaining
	}
	if len(candidates) == 0 {
		return &dto.NextWordResponse{Exhausted: true}, nil
	}

	words, err := s.wordlistRepo.ListWordsByIDs(ctx, candidates)
	if err != nil {
		return nil, domain.NewInternalError("failed to load candidate words", err)
	}
	// Pool entries may outlive their words if the wordlist was deleted.
	// A definition-less word has no zh2en prompt and no en2zh reference
	// to grade against, so it is skipped in both directions.
	promptable := words[:0]
	for _, w := range words {
		if w.Definition.Valid && w.Definition.String != "" {
			promptable = append(promptable, w)
		}
	}
	words = promptable
	if len(words) == 0 {
		return &dto.NextWordResponse{Exhausted: true}, nil
	}

	pick := words[s.rng.Intn(len(words))]
	prompt := pick.Term
	if dir == domain.DirectionZh2En {
		prompt = util.NullStringToString(pick.Definition)
	}
	return &dto.NextWordResponse{
		WordID:    pick.ID,
		Prompt:    prompt,
		Direction: string(dir),
	}, nil
}

// SubmitAttempt grades one answer and appends it to the attempt log.
// Grading is a normalized exact match against the expected field; for
// en2zh a configured semantic judge may upgrade a mismatch. Judge
// failures fall back to the exact-match outcome.
func (s *sessionService) SubmitAttempt(ctx context.Context, requesterID, sessionID string, req *dto.SubmitAttemptRequest) (*dto.AttemptResponse, error) {
	sess, err := s.loadForParticipant(ctx, requesterID, sessionID)
	if err != nil {
		return nil, err
	}

	dir, err := domain.ParseDirection(req.Direction)
	if err != nil {
		return nil, err
	}
	if dir == domain.DirectionRandom {
		return nil, domain.NewValidationError("direction must be zh2en or en2zh when submitting")
	}

	word, err := s.wordlistRepo.GetWordByID(ctx, req.WordID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load word", err)
	}
	if word == nil || word.WordlistID != sess.WordlistID {
		return nil, domain.NewValidationError("word does not belong to this session")
	}

	expected := word.Term
	if dir == domain.DirectionEn2Zh {
		expected = util.NullStringToString(word.Definition)
	}
	// A word without a reference is never gradable as correct; otherwise
	// an empty answer would match an empty expected.
	correct := expected != "" && util.NormalizeAnswer(req.Answer) == util.NormalizeAnswer(expected)

	var judgeDetail *dto.JudgeDetail
	if !correct && dir == domain.DirectionEn2Zh && s.judge != nil && expected != "" {
		judgeDetail = s.consultJudge(ctx, word.Term, expected, req.Answer)
		if judgeDetail != nil && judgeDetail.Used {
			switch judgeDetail.Verdict {
			case domain.VerdictCorrect:
				correct = true
			case domain.VerdictPartial:
				correct = s.judgeCfg.TreatPartialAsCorrect
			}
		}
	}

	att := &models.Attempt{
		ID:         util.NewULID(),
		SessionID:  sessionID,
		UserID:     requesterID,
		WordID:     req.WordID,
		Direction:  string(dir),
		AnswerText: util.StringToNullString(req.Answer),
		Correct:    correct,
	}
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.sessionRepo.CreateAttempt(txCtx, att); err != nil {
			return err
		}
		return s.sessionRepo.TouchSession(txCtx, sessionID, time.Now().UTC())
	})
	if err != nil {
		return nil, domain.NewInternalError("failed to record attempt", err)
	}

	points := 0
	if correct {
		points = domain.PointsPerCorrect
	}
	return &dto.AttemptResponse{
		AttemptID:     att.ID,
		Correct:       correct,
		PointsAwarded: points,
		CorrectAnswer: expected,
		Definition:    util.NullStringToString(word.Definition),
		Example:       util.NullStringToString(word.Example),
		JudgeDetail:   judgeDetail,
	}, nil
}

func (s *sessionService) consultJudge(ctx context.Context, term, reference, answer string) *dto.JudgeDetail {
	result, err := s.judge.JudgeDefinition(ctx, term, reference, answer)
	if err != nil {
		logger.Get().Warn("Definition judge unavailable, keeping exact-match verdict", zap.Error(err))
		return &dto.JudgeDetail{Used: false, Reason: "judge unavailable"}
	}
	return &dto.JudgeDetail{
		Used:    true,
		Reason:  result.Reason,
		Verdict: result.Verdict,
		Score:   result.Score,
	}
}

// Scoreboard aggregates points, accuracy and totals per participant.
// Participants with no attempts yet appear with zeroes.
func (s *sessionService) Scoreboard(ctx context.Context, requesterID, sessionID string) (*dto.ScoreboardResponse, error) {
	sess, err := s.loadForParticipant(ctx, requesterID, sessionID)
	if err != nil {
		return nil, err
	}

	stats, err := s.sessionRepo.GetSessionStats(ctx, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load session stats", err)
	}

	resp := &dto.ScoreboardResponse{
		Scores:   map[string]int{sess.UserAID: 0, sess.UserBID: 0},
		Accuracy: map[string]float64{sess.UserAID: 0, sess.UserBID: 0},
		Totals:   map[string]int{sess.UserAID: 0, sess.UserBID: 0},
	}
	for _, st := range stats {
		resp.Scores[st.UserID] = st.CorrectCount * domain.PointsPerCorrect
		resp.Totals[st.UserID] = st.Total
		if st.Total > 0 {
			resp.Accuracy[st.UserID] = float64(st.CorrectCount) / float64(st.Total)
		}
	}
	return resp, nil
}

func (s *sessionService) Progress(ctx context.Context, requesterID, sessionID string) (*dto.ProgressResponse, error) {
	board, err := s.Scoreboard(ctx, requesterID, sessionID)
	if err != nil {
		return nil, err
	}

	activity, err := s.sessionRepo.GetLastActivity(ctx, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load last activity", err)
	}

	resp := &dto.ProgressResponse{
		ScoreboardResponse: *board,
		LastActivity:       make(map[string]string, len(activity)),
	}
	for _, row := range activity {
		resp.LastActivity[row.UserID] = row.LastAttempt.UTC().Format(time.RFC3339)
	}
	return resp, nil
}

// Wrongbook lists distinct words either participant has answered wrong.
// Attempts can reference words that were deleted with their wordlist;
// those entries are silently dropped.
func (s *sessionService) Wrongbook(ctx context.Context, requesterID, sessionID string) ([]dto.WrongbookEntry, error) {
	if _, err := s.loadForParticipant(ctx, requesterID, sessionID); err != nil {
		return nil, err
	}

	wrong, err := s.sessionRepo.GetWrongAttempts(ctx, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load wrong attempts", err)
	}
	if len(wrong) == 0 {
		return []dto.WrongbookEntry{}, nil
	}

	byWord := make(map[string][]string)
	order := make([]string, 0, len(wrong))
	for _, row := range wrong {
		if _, seen := byWord[row.WordID]; !seen {
			order = append(order, row.WordID)
		}
		byWord[row.WordID] = append(byWord[row.WordID], row.UserID)
	}

	words, err := s.wordlistRepo.ListWordsByIDs(ctx, order)
	if err != nil {
		return nil, domain.NewInternalError("failed to load wrongbook words", err)
	}
	wordByID := make(map[string]models.Word, len(words))
	for _, w := range words {
		wordByID[w.ID] = w
	}

	out := make([]dto.WrongbookEntry, 0, len(order))
	for _, id := range order {
		w, ok := wordByID[id]
		if !ok {
			continue
		}
		out = append(out, dto.WrongbookEntry{
			WordID:     id,
			Term:       w.Term,
			Definition: util.NullStringToString(w.Definition),
			Example:    util.NullStringToString(w.Example),
			WrongBy:    byWord[id],
		})
	}
	return out, nil
}

// SetStatus toggles active<->archived. Setting the current status again
// is a no-op success.
func (s *sessionService) SetStatus(ctx context.Context, requesterID, sessionID, status string) (*dto.SessionResponse, error) {
	if status != domain.SessionStatusActive && status != domain.SessionStatusArchived {
		return nil, domain.NewValidationError("status must be active or archived")
	}

	sess, err := s.loadForParticipant(ctx, requesterID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status == status {
		return s.toSessionResponse(ctx, sess), nil
	}

	if err := s.sessionRepo.UpdateSessionStatus(ctx, sessionID, status); err != nil {
		return nil, domain.NewInternalError("failed to update session status", err)
	}
	sess.Status = status

	logger.Get().Info("Session status changed",
		zap.String("session_id", sessionID), zap.String("status", status))
	return s.toSessionResponse(ctx, sess), nil
}

// Delete removes a session and its attempt log. Only the creator may
// delete; deleting a session that is already gone succeeds.
func (s *sessionService) Delete(ctx context.Context, requesterID, sessionID string) error {
	sess, err := s.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return domain.NewInternalError("failed to load session", err)
	}
	if sess == nil {
		return nil
	}
	if sess.CreatedBy != requesterID {
		return domain.NewPermissionError("only the creator can delete a session")
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.sessionRepo.DeleteAttemptsBySession(txCtx, sessionID); err != nil {
			return err
		}
		return s.sessionRepo.DeleteSession(txCtx, sessionID)
	})
	if err != nil {
		return domain.NewInternalError("failed to delete session", err)
	}

	logger.Get().Info("Session deleted", zap.String("session_id", sessionID))
	return nil
}

func (s *sessionService) loadForParticipant(ctx context.Context, requesterID, sessionID string) (*models.StudySession, error) {
	sess, err := s.sessionRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, domain.NewInternalError("failed to load session", err)
	}
	if sess == nil {
		return nil, domain.NewNotFoundError("session not found")
	}
	if requesterID != sess.UserAID && requesterID != sess.UserBID {
		return nil, domain.NewPermissionError("not a participant of this session")
	}
	return sess, nil
}

func (s *sessionService) toSessionResponse(ctx context.Context, sess *models.StudySession) *dto.SessionResponse {
	resp := &dto.SessionResponse{
		ID:               sess.ID,
		Status:           sess.Status,
		Zh2EnRatio:       sess.Zh2EnRatio,
		PracticeRatio:    sess.PracticeRatio,
		PracticePoolSize: len(sess.PracticePool),
		CreatedBy:        sess.CreatedBy,
		CreatedAt:        sess.CreatedAt.UTC().Format(time.RFC3339),
		LastActivity:     sess.LastActivity.UTC().Format(time.RFC3339),
	}

	// Enrichment is best effort; the core fields never depend on it.
	if wl, err := s.wordlistRepo.GetWordlistByID(ctx, sess.WordlistID); err == nil && wl != nil {
		resp.Wordlist = &dto.SessionWordlist{ID: wl.ID, Name: wl.Name}
	}
	for _, id := range []string{sess.UserAID, sess.UserBID} {
		if u, err := s.userRepo.GetUserByID(ctx, id); err == nil && u != nil {
			resp.Participants = append(resp.Participants, dto.SessionParticipant{ID: u.ID, Username: u.Username})
		}
	}
	return resp
}
