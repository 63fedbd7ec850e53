package trade

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/erp/salesengine/internal/domain/audit"
	"github.com/erp/salesengine/internal/domain/inventory"
	"github.com/erp/salesengine/internal/domain/shared"
	"github.com/erp/salesengine/internal/domain/trade"
	"github.com/erp/salesengine/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const auditModelPool = "inventory_pool"

// SaleReturnService manages filing returns and moving them through their lifecycle.
// Every call runs in its own transaction.
type SaleReturnService struct {
	uow        UnitOfWork
	saleRepo   trade.SaleRepository
	returnRepo trade.SaleReturnRepository
	logger     *zap.Logger
	metrics    *telemetry.SalesMetrics
}

// NewSaleReturnService creates a new SaleReturnService
func NewSaleReturnService(
	uow UnitOfWork,
	saleRepo trade.SaleRepository,
	returnRepo trade.SaleReturnRepository,
	logger *zap.Logger,
) *SaleReturnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleReturnService{
		uow:        uow,
		saleRepo:   saleRepo,
		returnRepo: returnRepo,
		logger:     logger,
	}
}

// SetSalesMetrics sets the sales metrics collector
func (s *SaleReturnService) SetSalesMetrics(sm *telemetry.SalesMetrics) {
	s.metrics = sm
}

// FileReturn files a PENDING return against a sale. The quantity may not exceed
// what remains after every other return that is neither REJECTED nor CANCELLED.
func (s *SaleReturnService) FileReturn(ctx context.Context, actx ActionContext, saleID uuid.UUID, req FileReturnRequest) (*SaleReturnResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale_return", "file")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleID, saleID.String(),
		telemetry.SpanAttrQuantity, req.ReturnQuantity,
	)

	if err := actx.Validate(); err != nil {
		return nil, err
	}

	var ret *trade.SaleReturn
	err := s.uow.Execute(ctx, func(repos TransactionalRepositories) error {
		// Locking the sale serializes concurrent filings against it
		sale, err := findSaleForUpdate(ctx, repos, saleID)
		if err != nil {
			return err
		}

		reserved, err := repos.ReturnRepo().SumReservedQuantity(ctx, sale.ID)
		if err != nil {
			return fmt.Errorf("sum reserved return quantity: %w", err)
		}

		ref, err := repos.ReferenceCodes().Next(ctx, trade.ReturnReferencePrefix)
		if err != nil {
			return fmt.Errorf("generate return reference: %w", err)
		}

		ret, err = trade.NewSaleReturn(ref, sale, req.ReturnQuantity, reserved, req.Reason, req.Notes, req.IsRestockable(), actx.ActorID)
		if err != nil {
			return err
		}
		if err := repos.ReturnRepo().Create(ctx, ret); err != nil {
			return fmt.Errorf("create return: %w", err)
		}

		entry, err := actx.auditEntry(auditModelReturn, ret.ID, audit.ActionCreate,
			fmt.Sprintf("Return %s filed for %d of %d units of sale %s (refund %s)",
				ref, ret.ReturnQuantity, sale.Quantity, sale.ReferenceCode, ret.RefundAmount.StringFixed(2)))
		if err != nil {
			return err
		}
		return repos.AuditRepo().Append(ctx, entry)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordReturnFiled(ctx, ret.Restockable)
	s.logger.Info("Return filed",
		zap.String("reference", ret.ReferenceCode),
		zap.String("sale_reference", ret.SaleReferenceCode),
		zap.Int64("quantity", ret.ReturnQuantity))

	response := ToSaleReturnResponse(ret)
	return &response, nil
}

// UpdateReturnStatus moves a return to a new status. Reaching PROCESSED restocks
// the pool (or records the loss) and refreshes the sale's status.
func (s *SaleReturnService) UpdateReturnStatus(ctx context.Context, actx ActionContext, returnID uuid.UUID, req UpdateReturnStatusRequest) (*ReturnStatusUpdateResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale_return", "update_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReturnID, returnID.String(),
		telemetry.SpanAttrStatus, req.Status,
	)

	if err := actx.Validate(); err != nil {
		return nil, err
	}
	target := trade.ReturnStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	var (
		ret     *trade.SaleReturn
		effects ReturnSideEffects
	)
	err := s.uow.Execute(ctx, func(repos TransactionalRepositories) error {
		effects = ReturnSideEffects{}

		var err error
		ret, err = repos.ReturnRepo().FindByIDForUpdate(ctx, returnID)
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewReferenceNotFoundError("RETURN_NOT_FOUND", fmt.Sprintf("Return %s not found", returnID))
		}
		if err != nil {
			return fmt.Errorf("lookup return: %w", err)
		}

		from := ret.Status
		if err := ret.TransitionTo(target, actx.ActorID, req.Notes); err != nil {
			return err
		}
		if err := repos.ReturnRepo().UpdateStatus(ctx, ret); err != nil {
			return fmt.Errorf("update return status: %w", err)
		}

		entry, err := actx.auditEntry(auditModelReturn, ret.ID, audit.ActionStatusChange,
			fmt.Sprintf("Return %s moved from %s to %s", ret.ReferenceCode, from, ret.Status))
		if err != nil {
			return err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return fmt.Errorf("append audit entry: %w", err)
		}

		if ret.Status != trade.ReturnStatusProcessed {
			return nil
		}
		effects, err = applyProcessedReturn(ctx, repos, actx, ret)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.metrics.RecordReturnTransition(ctx, string(ret.Status), effects.QuantityRestocked)
	s.logger.Info("Return status updated",
		zap.String("reference", ret.ReferenceCode),
		zap.String("status", string(ret.Status)),
		zap.Bool("restocked", effects.InventoryRestocked),
		zap.String("sale_status", effects.SaleStatus))

	return &ReturnStatusUpdateResponse{
		Return:      ToSaleReturnResponse(ret),
		SideEffects: effects,
	}, nil
}

// applyProcessedReturn performs the inventory and sale effects of a PROCESSED return.
// Lock order is return, sale, pool.
func applyProcessedReturn(ctx context.Context, repos TransactionalRepositories, actx ActionContext, ret *trade.SaleReturn) (ReturnSideEffects, error) {
	var effects ReturnSideEffects

	sale, err := findSaleForUpdate(ctx, repos, ret.SaleID)
	if err != nil {
		return effects, err
	}

	locked, err := repos.PoolRepo().FindByIDsForUpdate(ctx, []uuid.UUID{ret.PoolID})
	if err != nil {
		return effects, fmt.Errorf("lock pool: %w", err)
	}
	if len(locked) == 0 {
		return effects, shared.NewReferenceNotFoundError("POOL_NOT_FOUND",
			fmt.Sprintf("Inventory pool %s of return %s not found", ret.PoolID, ret.ReferenceCode))
	}
	pool := &locked[0]

	var movement *inventory.Movement
	if ret.Restockable {
		previous, next, err := pool.Restock(ret.ReturnQuantity)
		if err != nil {
			return effects, err
		}
		if err := repos.PoolRepo().UpdateQuantity(ctx, pool); err != nil {
			return effects, fmt.Errorf("update pool quantity: %w", err)
		}
		movement, err = inventory.NewMovement(pool.ID, pool.ProductID, inventory.MovementTypeReturnIn,
			ret.ReturnQuantity, previous, next, ret.ReferenceCode, ret.ID)
		if err != nil {
			return effects, err
		}

		history, err := inventory.NewProductTransaction(pool.ProductID, pool.ID, inventory.ProductTransactionQuantityIn,
			ret.ReturnQuantity, ret.ReturnPrice, ret.ReferenceCode, ret.ID, actx.ActorID)
		if err != nil {
			return effects, err
		}
		history.WithNotes(fmt.Sprintf("Returned from sale %s", ret.SaleReferenceCode))
		if err := repos.ProductTransactionRepo().Create(ctx, history); err != nil {
			return effects, fmt.Errorf("append product transaction: %w", err)
		}

		entry, err := actx.auditEntry(auditModelPool, pool.ID, audit.ActionRestock,
			fmt.Sprintf("Batch %s restocked %d -> %d by return %s", pool.BatchNumber, previous, next, ret.ReferenceCode))
		if err != nil {
			return effects, err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return effects, fmt.Errorf("append audit entry: %w", err)
		}

		effects.InventoryRestocked = true
		effects.QuantityRestocked = ret.ReturnQuantity
		effects.ProductTransactionID = &history.ID
	} else {
		movement, err = inventory.NewMovement(pool.ID, pool.ProductID, inventory.MovementTypeReturnLoss,
			0, pool.CurrentQuantity, pool.CurrentQuantity, ret.ReferenceCode, ret.ID)
		if err != nil {
			return effects, err
		}
	}

	movement.WithActor(actx.ActorID).WithReason(ret.Reason)
	if err := repos.MovementRepo().Create(ctx, movement); err != nil {
		return effects, fmt.Errorf("append movement: %w", err)
	}
	effects.MovementID = &movement.ID

	// Re-read inside the transaction; includes the return just processed
	returned, err := repos.ReturnRepo().SumProcessedQuantity(ctx, sale.ID)
	if err != nil {
		return effects, fmt.Errorf("sum processed return quantity: %w", err)
	}
	previousStatus := sale.Status
	changed, err := sale.ApplyReturnedQuantity(returned)
	if err != nil {
		return effects, err
	}
	if changed {
		if err := repos.SaleRepo().UpdateStatus(ctx, sale); err != nil {
			return effects, fmt.Errorf("update sale status: %w", err)
		}
		entry, err := actx.auditEntry(auditModelSale, sale.ID, audit.ActionStatusChange,
			fmt.Sprintf("Sale %s moved from %s to %s after return %s", sale.ReferenceCode, previousStatus, sale.Status, ret.ReferenceCode))
		if err != nil {
			return effects, err
		}
		if err := repos.AuditRepo().Append(ctx, entry); err != nil {
			return effects, fmt.Errorf("append audit entry: %w", err)
		}
	}
	effects.SaleStatus = string(sale.Status)
	effects.SaleStatusChanged = changed

	return effects, nil
}

// ListBySale lists the returns filed against a sale, newest first
func (s *SaleReturnService) ListBySale(ctx context.Context, saleID uuid.UUID, filter ReturnListFilter) ([]SaleReturnResponse, int64, error) {
	if _, err := s.saleRepo.FindByID(ctx, saleID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, 0, shared.NewReferenceNotFoundError("SALE_NOT_FOUND", fmt.Sprintf("Sale %s not found", saleID))
		}
		return nil, 0, err
	}

	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}

	returns, total, err := s.returnRepo.FindBySale(ctx, saleID, f)
	if err != nil {
		return nil, 0, err
	}
	return ToSaleReturnResponses(returns), total, nil
}

func findSaleForUpdate(ctx context.Context, repos TransactionalRepositories, saleID uuid.UUID) (*trade.SaleRecord, error) {
	sale, err := repos.SaleRepo().FindByIDForUpdate(ctx, saleID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.NewReferenceNotFoundError("SALE_NOT_FOUND", fmt.Sprintf("Sale %s not found", saleID))
	}
	if err != nil {
		return nil, fmt.Errorf("lookup sale: %w", err)
	}
	return sale, nil
}
