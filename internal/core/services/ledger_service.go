package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/paisetrail/ledger_backend/internal/apperrors"
	"github.com/paisetrail/ledger_backend/internal/core/domain"
	portsrepo "github.com/paisetrail/ledger_backend/internal/core/ports/repositories"
	portssvc "github.com/paisetrail/ledger_backend/internal/core/ports/services"
	"github.com/paisetrail/ledger_backend/internal/dto"
	"github.com/paisetrail/ledger_backend/internal/middleware"
	"github.com/paisetrail/ledger_backend/internal/utils"
	"github.com/paisetrail/ledger_backend/internal/utils/accounting"
)

var (
	ErrEntryMinLines    = errors.New("entry must have at least two lines")
	ErrEntryMinAccounts = errors.New("entry must affect at least two different accounts")
	ErrAlreadyReversed  = errors.New("entry has already been reversed")
	ErrReversalOfRevers = errors.New("a reversal entry cannot itself be reversed")
)

// ledgerService is the journal engine. Posting and reversal are the only write
// paths; everything else about an entry is immutable once committed.
type ledgerService struct {
	entryRepo  portsrepo.EntryRepositoryFacade
	accountSvc portssvc.AccountSvcFacade
	audit      *utils.PosthogClientWrapper
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(entryRepo portsrepo.EntryRepositoryFacade, accountSvc portssvc.AccountSvcFacade, audit *utils.PosthogClientWrapper) portssvc.LedgerSvcFacade {
	return &ledgerService{
		entryRepo:  entryRepo,
		accountSvc: accountSvc,
		audit:      audit,
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

// buildLines converts request lines to domain lines owned by entryID, checking
// direction and positivity per line.
func buildLines(entryID string, reqLines []dto.CreateEntryLineRequest, userID string, now time.Time) ([]domain.LedgerLine, error) {
	lines := make([]domain.LedgerLine, len(reqLines))
	for i, lr := range reqLines {
		direction := domain.EntryDirection(lr.Direction)
		if direction != domain.Debit && direction != domain.Credit {
			return nil, fmt.Errorf("%w: line direction must be DEBIT or CREDIT, got %q", apperrors.ErrValidation, lr.Direction)
		}
		if lr.AmountPaise <= 0 {
			return nil, fmt.Errorf("%w: line amount must be positive paise, got %d", apperrors.ErrValidation, lr.AmountPaise)
		}
		lines[i] = domain.LedgerLine{
			LineID:    uuid.NewString(),
			EntryID:   entryID,
			AccountID: lr.AccountID,
			Direction: direction,
			Amount:    domain.Paise(lr.AmountPaise),
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}
	return lines, nil
}

// PostEntry validates and persists a balanced journal entry. Any validation
// failure rejects the whole entry; nothing is ever partially posted.
func (s *ledgerService) PostEntry(ctx context.Context, req dto.CreateEntryRequest, creatorUserID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if len(req.Lines) < 2 {
		return nil, fmt.Errorf("%w", ErrEntryMinLines)
	}

	accountSet := make(map[string]bool)
	for _, line := range req.Lines {
		accountSet[line.AccountID] = true
	}
	if len(accountSet) < 2 {
		return nil, fmt.Errorf("%w", ErrEntryMinAccounts)
	}

	if req.Description == "" {
		return nil, fmt.Errorf("%w: entry description is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	entryID := uuid.NewString()

	lines, err := buildLines(entryID, req.Lines, creatorUserID, now)
	if err != nil {
		return nil, err
	}

	if !domain.IsBalanced(lines) {
		debits, credits := domain.SumByDirection(lines)
		return nil, fmt.Errorf("%w: debits sum to %d paise, credits to %d paise", apperrors.ErrUnbalancedEntry, debits, credits)
	}

	// Every referenced account must exist before any insert happens.
	accountIDs := make([]string, 0, len(accountSet))
	for id := range accountSet {
		accountIDs = append(accountIDs, id)
	}
	accountsMap, err := s.accountSvc.GetAccountsByIDs(ctx, accountIDs)
	if err != nil {
		logger.Error("Failed to fetch accounts for entry posting", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to fetch accounts: %w", err)
	}
	for _, id := range accountIDs {
		if _, found := accountsMap[id]; !found {
			return nil, fmt.Errorf("%w: account %s", apperrors.ErrNotFound, id)
		}
	}

	entryDate := req.EntryDate
	if entryDate.IsZero() {
		entryDate = now
	}

	entry := domain.LedgerEntry{
		EntryID:       entryID,
		ReferenceType: domain.ReferenceType(req.ReferenceType),
		ReferenceID:   req.ReferenceID,
		Description:   req.Description,
		EntryDate:     entryDate,
		IsReversal:    false,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.entryRepo.SaveEntry(ctx, entry, lines); err != nil {
		logger.Error("Failed to save ledger entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to save entry: %w", err)
	}

	s.audit.Enqueue(creatorUserID, "ledger_entry_created", map[string]any{
		"entry_id":       entryID,
		"reference_type": req.ReferenceType,
		"reference_id":   req.ReferenceID,
		"line_count":     len(lines),
		"posted_at":      now,
	})

	logger.Info("Ledger entry posted", slog.String("entry_id", entryID), slog.String("reference_type", req.ReferenceType))
	entry.Lines = lines
	return &entry, nil
}

// BuildReversalEntry runs the reversal guards for a posted entry and returns
// the unsaved compensating entry with every line direction flipped. Each
// original may be reversed at most once, and a reversal can never itself be
// reversed; a wrong reversal is corrected by re-posting the original lines as
// a new entry. Callers whose business rows must commit together with the
// reversal persist the returned entry inside their own transaction.
func (s *ledgerService) BuildReversalEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.LedgerEntry, []domain.LedgerLine, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	original, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Original entry not found for reversal", slog.String("entry_id", entryID))
			return nil, nil, apperrors.ErrNotFound
		}
		logger.Error("Failed to fetch original entry for reversal", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, nil, fmt.Errorf("failed to retrieve original entry: %w", err)
	}

	if original.IsReversal {
		s.auditImmutabilityViolation(userID, entryID, "reverse_reversal")
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrReversalOfRevers.Error())
	}

	if _, err := s.entryRepo.FindReversalOf(ctx, entryID); err == nil {
		s.auditImmutabilityViolation(userID, entryID, "double_reversal")
		return nil, nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, ErrAlreadyReversed.Error())
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		logger.Error("Failed to check for existing reversal", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, nil, fmt.Errorf("failed to check for existing reversal: %w", err)
	}

	originalLines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		logger.Error("Failed to fetch original lines for reversal", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, nil, fmt.Errorf("failed to retrieve original lines: %w", err)
	}

	now := time.Now().UTC()
	reversalID := uuid.NewString()

	reversedLines := make([]domain.LedgerLine, len(originalLines))
	for i, orig := range originalLines {
		flipped := domain.Credit
		if orig.Direction == domain.Credit {
			flipped = domain.Debit
		}
		reversedLines[i] = domain.LedgerLine{
			LineID:    uuid.NewString(),
			EntryID:   reversalID,
			AccountID: orig.AccountID,
			Direction: flipped,
			Amount:    orig.Amount,
			AuditFields: domain.AuditFields{
				CreatedAt:     now,
				CreatedBy:     userID,
				LastUpdatedAt: now,
				LastUpdatedBy: userID,
			},
		}
	}

	description := fmt.Sprintf("Reversal of: %s", original.Description)
	if reason != "" {
		description = fmt.Sprintf("%s (%s)", description, reason)
	}

	reversal := domain.LedgerEntry{
		EntryID:         reversalID,
		ReferenceType:   original.ReferenceType,
		ReferenceID:     original.ReferenceID,
		Description:     description,
		EntryDate:       now,
		IsReversal:      true,
		ReversesEntryID: &original.EntryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	return &reversal, reversedLines, nil
}

// ReverseEntry builds and persists the compensating entry for a posted one.
func (s *ledgerService) ReverseEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	reversal, reversedLines, err := s.BuildReversalEntry(ctx, entryID, reason, userID)
	if err != nil {
		return nil, err
	}

	if err := s.entryRepo.SaveEntry(ctx, *reversal, reversedLines); err != nil {
		logger.Error("Failed to save reversal entry", slog.String("error", err.Error()), slog.String("original_entry_id", entryID))
		return nil, fmt.Errorf("failed to save reversal entry: %w", err)
	}

	s.audit.Enqueue(userID, "ledger_entry_created", map[string]any{
		"entry_id":          reversal.EntryID,
		"reverses_entry_id": entryID,
		"is_reversal":       true,
		"posted_at":         reversal.EntryDate,
	})

	logger.Info("Ledger entry reversed", slog.String("original_entry_id", entryID), slog.String("reversal_entry_id", reversal.EntryID))
	reversal.Lines = reversedLines
	return reversal, nil
}

// GetEntryByID retrieves a ledger entry with its lines populated.
func (s *ledgerService) GetEntryByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	entry, err := s.entryRepo.FindEntryByID(ctx, entryID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find entry by ID", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to find entry %s: %w", entryID, err)
	}

	lines, err := s.entryRepo.FindLinesByEntryID(ctx, entryID)
	if err != nil {
		logger.Error("Failed to fetch lines for entry", slog.String("error", err.Error()), slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to retrieve lines for entry %s: %w", entryID, apperrors.ErrInternal)
	}
	entry.Lines = lines

	return entry, nil
}

// ListEntries retrieves a paginated list of journal entries.
func (s *ledgerService) ListEntries(ctx context.Context, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	limit := params.Limit
	if limit <= 0 {
		limit = 20
	}

	entries, nextToken, err := s.entryRepo.ListEntries(ctx, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list entries from repository", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to retrieve entries: %w", err)
	}

	entryResponses := make([]dto.EntryResponse, len(entries))
	for i := range entries {
		entryResponses[i] = dto.ToEntryResponse(&entries[i])
	}

	return &dto.ListEntriesResponse{
		Entries:   entryResponses,
		NextToken: nextToken,
	}, nil
}

// AccountBalance recomputes an account's balance from its posted lines. The
// journal is the system of record; no stored balance column exists.
func (s *ledgerService) AccountBalance(ctx context.Context, accountID string) (domain.Paise, error) {
	account, err := s.accountSvc.GetAccountByID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to find account %s: %w", accountID, err)
	}

	debits, credits, err := s.entryRepo.SumLinesByAccountID(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to sum lines for account %s: %w", accountID, err)
	}

	return accounting.BalanceFromSums(account.Type, debits, credits), nil
}

// auditImmutabilityViolation records an attempt to mutate or re-reverse journal
// history. These attempts are expected to be rare and always worth flagging.
func (s *ledgerService) auditImmutabilityViolation(userID, entryID, kind string) {
	s.audit.Enqueue(userID, "immutability_violation_attempted", map[string]any{
		"entry_id":     entryID,
		"violation":    kind,
		"attempted_at": time.Now().UTC(),
	})
}
