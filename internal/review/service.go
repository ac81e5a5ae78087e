// Package review runs review sessions: it loads batches, keeps the selections, focus and
// undo history of each open batch, and applies the reviewer's edits.
package review

import (
	"context"
	"fmt"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/a3tai/mcp-idp-review/internal/classify"
	reviewerrors "github.com/a3tai/mcp-idp-review/internal/errors"
	"github.com/a3tai/mcp-idp-review/internal/history"
	"github.com/a3tai/mcp-idp-review/internal/loader"
	"github.com/a3tai/mcp-idp-review/internal/navigation"
	"github.com/a3tai/mcp-idp-review/internal/ocr"
	"github.com/a3tai/mcp-idp-review/internal/security"
	"github.com/a3tai/mcp-idp-review/internal/selection"
	"github.com/a3tai/mcp-idp-review/internal/workspace"
)

// DefaultTypeaheadLimit caps typeahead results when the request sets no limit
const DefaultTypeaheadLimit = 10

// Options configure a Service
type Options struct {
	Directory      string
	MaxFileSize    int64
	HistoryMode    history.Mode
	HistoryLimit   int
	TypeaheadLimit int
	MinConfidence  float64
	Logger         *zap.Logger
}

// Service handles review operations by orchestrating the loader, the open sessions and
// their histories
type Service struct {
	opts      Options
	validator *security.PathValidator
	loader    *loader.Loader
	sessions  *Registry
	logger    *zap.Logger
}

// NewService creates a new review service rooted at opts.Directory
func NewService(opts Options) (*Service, error) {
	validator, err := security.NewPathValidator(opts.Directory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = loader.DefaultMaxFileSize
	}
	if opts.TypeaheadLimit <= 0 {
		opts.TypeaheadLimit = DefaultTypeaheadLimit
	}
	if opts.MinConfidence <= 0 {
		opts.MinConfidence = classify.DefaultMinConfidence
	}

	return &Service{
		opts:      opts,
		validator: validator,
		loader:    loader.New(validator, opts.MaxFileSize, opts.Logger),
		sessions:  NewRegistry(),
		logger:    opts.Logger,
	}, nil
}

// Sessions returns the registry of open sessions
func (s *Service) Sessions() *Registry {
	return s.sessions
}

func (s *Service) session(id string) (*Session, error) {
	if id == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "session_id is required")
	}
	return s.sessions.Get(id)
}

// LoadBatch loads a batch and opens a review session for it. Unclassified documents get
// a suggested class when the batch declares classification rules.
func (s *Service) LoadBatch(ctx context.Context, req LoadBatchRequest) (*LoadBatchResult, error) {
	if req.Path == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "path is required")
	}

	res, err := s.loader.Load(ctx, req.Path)
	if err != nil {
		return nil, err
	}

	suggested, err := s.suggest(ctx, res.Batch, res.Rules)
	if err != nil {
		return nil, err
	}

	sess := newSession(res.Batch, res.Source, res.ExportPath, s.opts.HistoryMode, s.opts.HistoryLimit)
	s.sessions.Add(sess)

	s.logger.Info("session opened",
		zap.String("session", sess.ID),
		zap.String("source", res.Source),
		zap.Int("suggestions", suggested))

	return &LoadBatchResult{
		SessionID:   sess.ID,
		Name:        res.Batch.Name,
		Source:      res.Source,
		Stats:       res.Batch.Stats(),
		Suggestions: suggested,
		Outline:     Outline(res.Batch, sess.docs, sess.pages, sess.nav.Focus()),
	}, nil
}

// suggest runs the classifier over the unclassified documents of b and returns how many
// got a suggestion
func (s *Service) suggest(ctx context.Context, b *workspace.Batch, rules []classify.Rule) (int, error) {
	if len(rules) == 0 {
		return 0, nil
	}
	classifier, err := classify.NewClassifier(rules, s.opts.MinConfidence, s.logger)
	if err != nil {
		return 0, reviewerrors.Wrap(reviewerrors.ErrorTypeLoad, "invalid classification rules", err)
	}

	i := b.ClassIndex(workspace.UnclassifiedClassID)
	if i < 0 {
		return 0, nil
	}
	count := 0
	docs := b.Classes[i].Documents
	for j := range docs {
		words, err := b.DocumentWords(docs[j].ID)
		if err != nil {
			return count, err
		}
		suggestion, err := classifier.Classify(ctx, ocr.Text(words))
		if err != nil {
			return count, err
		}
		if suggestion == nil || b.ClassIndex(suggestion.ClassID) < 0 {
			continue
		}
		docs[j].SuggestedClass = suggestion.ClassID
		count++
	}
	return count, nil
}

// Outline renders the current state of a session
func (s *Service) Outline(sessionID string) (string, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return "", err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return Outline(sess.batch, sess.docs, sess.pages, sess.nav.Focus()), nil
}

// CloseSession discards a session without exporting it
func (s *Service) CloseSession(sessionID string) error {
	if _, err := s.session(sessionID); err != nil {
		return err
	}
	s.sessions.Remove(sessionID)
	s.logger.Info("session closed", zap.String("session", sessionID))
	return nil
}

// expand resolves the ids of a selection request. Group ids (a class in the documents
// view, a document in the pages view) stand for all of their items.
func expand(b *workspace.Batch, view workspace.View, ids []string) ([]string, error) {
	items := make(map[string]bool)
	for _, item := range b.Flatten(view) {
		items[item.ID] = true
	}
	groups := make(map[string][]string)
	for _, g := range b.Groups(view) {
		for _, item := range g.Items {
			groups[g.ID] = append(groups[g.ID], item.ID)
		}
		if _, ok := groups[g.ID]; !ok {
			groups[g.ID] = nil
		}
	}

	var out []string
	for _, id := range ids {
		if items[id] {
			out = append(out, id)
			continue
		}
		if members, ok := groups[id]; ok {
			out = append(out, members...)
			continue
		}
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "no %s or group with id %s", view, id)
	}
	return out, nil
}

func selectionResult(view workspace.View, state *selection.State, flat []selection.Item, changed bool) *SelectionResult {
	return &SelectionResult{
		View:     view.String(),
		Selected: state.Selected().Ordered(flat),
		Anchors:  state.Anchors(),
		Changed:  changed,
	}
}

// Select applies a non-range selection to the documents or pages view
func (s *Service) Select(req SelectRequest) (*SelectionResult, error) {
	view, err := workspace.ParseView(req.View)
	if err != nil {
		return nil, err
	}
	mode, err := selection.ParseMode(req.Mode)
	if err != nil {
		return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeInvalidArgument, "invalid selection mode", err)
	}
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	ids, err := expand(sess.batch, view, req.IDs)
	if err != nil {
		return nil, err
	}
	state := sess.state(view)
	before := state.Selected()
	state.Toggle(ids, mode)

	flat := sess.batch.Flatten(view)
	return selectionResult(view, state, flat, !before.Equal(state.Selected())), nil
}

// SelectRange selects the contiguous run between the anchor and the target
func (s *Service) SelectRange(req SelectRangeRequest) (*SelectionResult, error) {
	view, err := workspace.ParseView(req.View)
	if err != nil {
		return nil, err
	}
	if req.Target == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "target is required")
	}
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	flat := sess.batch.Flatten(view)
	found := false
	for _, item := range flat {
		if item.ID == req.Target {
			found = true
			break
		}
	}
	if !found {
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeNotFound, "%s not found: %s", view, req.Target)
	}

	state := sess.state(view)
	changed := state.SelectRange(flat, req.Target, req.Append)
	return selectionResult(view, state, flat, changed), nil
}

// Key feeds a key press to the session's navigator
func (s *Service) Key(req KeyRequest) (*KeyResult, error) {
	key, err := navigation.ParseKey(req.Key)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	focus, changed := sess.nav.Press(sess.batch, sess.selections(), key)
	return &KeyResult{
		Focus:             focus,
		Changed:           changed,
		SelectedDocuments: sess.docs.Selected().Ordered(sess.batch.Flatten(workspace.ViewDocuments)),
		SelectedPages:     sess.pages.Selected().Ordered(sess.batch.Flatten(workspace.ViewPages)),
	}, nil
}

// targets returns ids, or the current selection of view when ids is empty
func targets(sess *Session, view workspace.View, ids []string) ([]string, error) {
	if len(ids) > 0 {
		return ids, nil
	}
	selected := sess.state(view).Selected().Ordered(sess.batch.Flatten(view))
	if len(selected) == 0 {
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeInvalidArgument, "no %s given and none selected", view)
	}
	return selected, nil
}

// edit applies fn to a copy of the session's batch. When fn succeeds the copy becomes
// the current batch and is recorded in the history under the label fn returns.
func (s *Service) edit(sessionID string, fn func(sess *Session, b *workspace.Batch) (label, created string, err error)) (*EditResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	work := sess.batch.Clone()
	label, created, err := fn(sess, work)
	if err != nil {
		return nil, err
	}
	sess.history.Record(label, work)
	sess.replace(work)

	s.logger.Debug("edit recorded", zap.String("session", sess.ID), zap.String("action", label))
	return &EditResult{Action: label, CreatedID: created, Stats: work.Stats()}, nil
}

// MoveDocuments reclassifies documents
func (s *Service) MoveDocuments(req MoveDocumentsRequest) (*EditResult, error) {
	if req.ClassID == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "class_id is required")
	}
	return s.edit(req.SessionID, func(sess *Session, b *workspace.Batch) (string, string, error) {
		ids, err := targets(sess, workspace.ViewDocuments, req.IDs)
		if err != nil {
			return "", "", err
		}
		if err := b.MoveDocuments(ids, req.ClassID); err != nil {
			return "", "", err
		}
		return fmt.Sprintf("move %d documents to %s", len(ids), req.ClassID), "", nil
	})
}

// MovePages moves pages to the end of a document
func (s *Service) MovePages(req MovePagesRequest) (*EditResult, error) {
	if req.DocumentID == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "document_id is required")
	}
	return s.edit(req.SessionID, func(sess *Session, b *workspace.Batch) (string, string, error) {
		ids, err := targets(sess, workspace.ViewPages, req.IDs)
		if err != nil {
			return "", "", err
		}
		if err := b.MovePages(ids, req.DocumentID); err != nil {
			return "", "", err
		}
		return fmt.Sprintf("move %d pages to %s", len(ids), req.DocumentID), "", nil
	})
}

// SplitDocument starts a new document at a page
func (s *Service) SplitDocument(req SplitDocumentRequest) (*EditResult, error) {
	if req.PageID == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "page_id is required")
	}
	return s.edit(req.SessionID, func(_ *Session, b *workspace.Batch) (string, string, error) {
		created, err := b.SplitDocument(req.PageID)
		if err != nil {
			return "", "", err
		}
		return "split at " + req.PageID, created, nil
	})
}

// MergeDocuments merges documents into the first of them in display order
func (s *Service) MergeDocuments(req MergeDocumentsRequest) (*EditResult, error) {
	return s.edit(req.SessionID, func(sess *Session, b *workspace.Batch) (string, string, error) {
		ids, err := targets(sess, workspace.ViewDocuments, req.IDs)
		if err != nil {
			return "", "", err
		}
		into, err := b.MergeDocuments(ids)
		if err != nil {
			return "", "", err
		}
		return fmt.Sprintf("merge %d documents into %s", len(ids), into), into, nil
	})
}

// RotatePages rotates pages clockwise
func (s *Service) RotatePages(req RotatePagesRequest) (*EditResult, error) {
	return s.edit(req.SessionID, func(sess *Session, b *workspace.Batch) (string, string, error) {
		ids, err := targets(sess, workspace.ViewPages, req.IDs)
		if err != nil {
			return "", "", err
		}
		if err := b.RotatePages(ids, req.Degrees); err != nil {
			return "", "", err
		}
		return fmt.Sprintf("rotate %d pages by %d", len(ids), req.Degrees), "", nil
	})
}

// RejectDocuments marks documents as rejected or clears the mark
func (s *Service) RejectDocuments(req RejectDocumentsRequest) (*EditResult, error) {
	return s.edit(req.SessionID, func(sess *Session, b *workspace.Batch) (string, string, error) {
		ids, err := targets(sess, workspace.ViewDocuments, req.IDs)
		if err != nil {
			return "", "", err
		}
		if err := b.RejectDocuments(ids, req.Rejected); err != nil {
			return "", "", err
		}
		verb := "reject"
		if !req.Rejected {
			verb = "restore"
		}
		return fmt.Sprintf("%s %d documents", verb, len(ids)), "", nil
	})
}

// SetField stores a corrected field value
func (s *Service) SetField(req SetFieldRequest) (*EditResult, error) {
	if req.DocumentID == "" || req.Field == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "document_id and field are required")
	}
	return s.edit(req.SessionID, func(_ *Session, b *workspace.Batch) (string, string, error) {
		if err := b.SetField(req.DocumentID, req.Field, req.Value); err != nil {
			return "", "", err
		}
		return fmt.Sprintf("set %s of %s", req.Field, req.DocumentID), "", nil
	})
}

// VerifyField confirms an extracted field value
func (s *Service) VerifyField(req VerifyFieldRequest) (*EditResult, error) {
	if req.DocumentID == "" || req.Field == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "document_id and field are required")
	}
	return s.edit(req.SessionID, func(_ *Session, b *workspace.Batch) (string, string, error) {
		if err := b.VerifyField(req.DocumentID, req.Field); err != nil {
			return "", "", err
		}
		return fmt.Sprintf("verify %s of %s", req.Field, req.DocumentID), "", nil
	})
}

// Typeahead looks up typed text in the recognized words of a document
func (s *Service) Typeahead(req TypeaheadRequest) (*TypeaheadResult, error) {
	if req.DocumentID == "" {
		return nil, reviewerrors.New(reviewerrors.ErrorTypeInvalidArgument, "document_id is required")
	}
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	words, err := sess.batch.DocumentWords(req.DocumentID)
	sess.mu.Unlock()
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.opts.TypeaheadLimit
	}
	result := &TypeaheadResult{
		Query:   req.Query,
		Matches: ocr.FindOcrMatches(words, req.Query, limit),
	}
	if result.Matches == nil {
		result.Matches = []ocr.Match{}
	}
	if completion, ok := ocr.FindSingleTypeaheadMatch(words, req.Query); ok {
		result.Suggestion = completion
	}
	return result, nil
}

func historyResult(sess *Session) *HistoryResult {
	return &HistoryResult{
		Mode:     sess.history.Mode().String(),
		Entries:  sess.history.Entries(),
		Branches: sess.history.Branches(),
		CanUndo:  sess.history.CanUndo(),
		CanRedo:  sess.history.CanRedo(),
	}
}

// Undo restores the batch as it was before the last recorded edit
func (s *Service) Undo(sessionID string) (*HistoryResult, error) {
	return s.step(sessionID, "undo", (*history.History[*workspace.Batch]).Undo)
}

// Redo reapplies the next edit on the active branch
func (s *Service) Redo(sessionID string) (*HistoryResult, error) {
	return s.step(sessionID, "redo", (*history.History[*workspace.Batch]).Redo)
}

func (s *Service) step(sessionID, name string, move func(*history.History[*workspace.Batch]) (*workspace.Batch, bool)) (*HistoryResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	b, ok := move(sess.history)
	if !ok {
		return nil, reviewerrors.Newf(reviewerrors.ErrorTypeInvalidState, "nothing to %s", name)
	}
	sess.replace(b)
	s.logger.Debug(name, zap.String("session", sess.ID))
	return historyResult(sess), nil
}

// History describes the undo history of a session. A non-negative branch switches the
// redo branch first.
func (s *Service) History(req HistoryRequest) (*HistoryResult, error) {
	sess, err := s.session(req.SessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if req.Branch >= 0 {
		if err := sess.history.SwitchBranch(req.Branch); err != nil {
			return nil, reviewerrors.Wrap(reviewerrors.ErrorTypeInvalidArgument, "cannot switch branch", err)
		}
	}
	return historyResult(sess), nil
}

// Complete validates the batch and, when nothing is left to do, exports it. An
// incomplete batch is not an error: the result lists what is missing.
func (s *Service) Complete(sessionID string) (*CompleteResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	result := &CompleteResult{Stats: sess.batch.Stats(), Problems: problems(sess.batch)}
	if len(result.Problems) > 0 {
		return result, nil
	}

	if err := s.validator.ValidatePath(sess.ExportPath); err != nil {
		return nil, err
	}
	if err := loader.Export(sess.batch, sess.ExportPath); err != nil {
		return nil, err
	}
	result.Complete = true
	result.ExportPath = sess.ExportPath

	s.logger.Info("batch completed",
		zap.String("session", sess.ID),
		zap.String("export", sess.ExportPath),
		zap.Int("documents", result.Stats.Documents))
	return result, nil
}

// Check reports what stands between a session and completion without exporting anything
func (s *Service) Check(sessionID string) (*CompleteResult, error) {
	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	return &CompleteResult{Stats: sess.batch.Stats(), Problems: problems(sess.batch)}, nil
}

func problems(b *workspace.Batch) []string {
	var out []string
	for _, problem := range multierr.Errors(b.Validate()) {
		out = append(out, problem.Error())
	}
	return out
}

// ServerInfo describes the server, its open sessions and its tools
func (s *Service) ServerInfo(serverName, version string) *ServerInfoResult {
	result := &ServerInfoResult{
		ServerName:     serverName,
		Version:        version,
		Directory:      s.validator.Root(),
		MaxFileSize:    s.opts.MaxFileSize,
		HistoryMode:    s.opts.HistoryMode.String(),
		HistoryLimit:   s.opts.HistoryLimit,
		Sessions:       []SessionInfo{},
		AvailableTools: availableTools(),
		UsageGuidance:  usageGuidance(),
	}
	for _, sess := range s.sessions.List() {
		sess.mu.Lock()
		result.Sessions = append(result.Sessions, sess.info())
		sess.mu.Unlock()
	}
	return result
}
