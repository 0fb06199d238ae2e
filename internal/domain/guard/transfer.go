package guard

import (
	"context"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/documents/transfer"
	"stockwise/pkg/logger"
)

// TransferRequest describes a move between two locations.
type TransferRequest struct {
	Source      location.Ref
	Destination location.Ref
	Items       []transfer.Item
	Comment     string
}

// ValidateAndCreateTransfer books a transfer if the source holds every requested quantity.
// Lines of the same product are summed before the check.
func (s *Service) ValidateAndCreateTransfer(ctx context.Context, req TransferRequest) (*transfer.Transfer, error) {
	t := transfer.NewTransfer(req.Source, req.Destination, req.Items)
	t.Comment = req.Comment
	if err := t.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, OpCreateTransfer, func(ctx context.Context) error {
		if _, err := s.locations.Resolve(ctx, t.Source); err != nil {
			return err
		}
		if _, err := s.locations.Resolve(ctx, t.Destination); err != nil {
			return err
		}

		qty := t.QuantityByProduct()
		productIDs := keys(qty)
		products, err := s.lockProducts(ctx, productIDs)
		if err != nil {
			return err
		}
		if err := s.lockBalances(ctx, productIDs, t.Source, t.Destination); err != nil {
			return err
		}

		for _, pid := range productIDs {
			if err := s.ensureAvailable(ctx, products[pid], t.Source, qty[pid]); err != nil {
				return err
			}
		}

		if err := s.assignNumber(ctx, &t.Document, entity.RecorderTransfer); err != nil {
			return err
		}
		if err := s.transfers.Create(ctx, t); err != nil {
			return err
		}
		return s.register.RecordMovements(ctx, t.Movements())
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer created",
		"transfer_id", t.ID,
		"source", t.Source.String(),
		"destination", t.Destination.String(),
		"lines", len(t.Items),
	)
	return t, nil
}

// CancelTransfer books the reverse of a completed transfer. The destination must
// still hold the transferred quantities.
func (s *Service) CancelTransfer(ctx context.Context, transferID id.ID) (*transfer.Transfer, error) {
	var t *transfer.Transfer

	err := s.inTx(ctx, OpCancelTransfer, func(ctx context.Context) error {
		var err error
		t, err = s.transfers.GetForUpdate(ctx, transferID)
		if err != nil {
			return err
		}
		if t.Status != transfer.StatusCompleted {
			return t.Cancel()
		}

		qty := t.QuantityByProduct()
		productIDs := keys(qty)
		products, err := s.lockProducts(ctx, productIDs)
		if err != nil {
			return err
		}
		if err := s.lockBalances(ctx, productIDs, t.Source, t.Destination); err != nil {
			return err
		}

		for _, pid := range productIDs {
			if err := s.ensureAvailable(ctx, products[pid], t.Destination, qty[pid]); err != nil {
				return err
			}
		}

		if err := t.Cancel(); err != nil {
			return err
		}
		if err := s.transfers.UpdateStatus(ctx, t); err != nil {
			return err
		}
		return s.register.ReverseRecorder(ctx, t.ID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "transfer cancelled", "transfer_id", t.ID)
	return t, nil
}
