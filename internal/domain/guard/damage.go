package guard

import (
	"context"

	"stockwise/internal/core/entity"
	"stockwise/internal/core/id"
	"stockwise/internal/core/location"
	"stockwise/internal/domain/catalogs/product"
	"stockwise/internal/domain/documents/damage"
	"stockwise/pkg/logger"
)

// DamageRequest describes a write-off. A nil Location books it at the origin warehouse.
type DamageRequest struct {
	ProductID id.ID
	Location  location.Ref
	Quantity  int64
	Reason    string
}

// ValidateAndCreateDamage records a write-off if the location holds the quantity.
// With auto-approval the stock effects are applied immediately; otherwise the damage
// waits in pending for ApproveDamage.
func (s *Service) ValidateAndCreateDamage(ctx context.Context, req DamageRequest) (*damage.Damage, error) {
	d := damage.NewDamage(req.ProductID, req.Location, req.Quantity, req.Reason)
	if err := d.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, OpCreateDamage, func(ctx context.Context) error {
		products, err := s.lockProducts(ctx, []id.ID{d.ProductID})
		if err != nil {
			return err
		}
		p := products[d.ProductID]
		at := d.EffectiveLocation(p.Origin())

		if _, err := s.locations.Resolve(ctx, at); err != nil {
			return err
		}
		if err := s.lockBalances(ctx, []id.ID{p.ID}, at); err != nil {
			return err
		}
		if err := s.ensureAvailable(ctx, p, at, d.Quantity); err != nil {
			return err
		}

		if s.autoApprove {
			if err := d.Approve(); err != nil {
				return err
			}
		}
		if err := s.assignNumber(ctx, &d.Document, entity.RecorderDamage); err != nil {
			return err
		}
		if err := s.damages.Create(ctx, d); err != nil {
			return err
		}
		if d.Status == damage.StatusApproved {
			return s.applyDamage(ctx, p, d)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "damage recorded",
		"damage_id", d.ID,
		"product_id", d.ProductID,
		"quantity", d.Quantity,
		"status", d.Status,
	)
	return d, nil
}

// ApproveDamage moves a pending damage to approved, re-checking availability.
func (s *Service) ApproveDamage(ctx context.Context, damageID id.ID) (*damage.Damage, error) {
	var d *damage.Damage

	err := s.inTx(ctx, OpApproveDamage, func(ctx context.Context) error {
		var err error
		d, err = s.damages.GetForUpdate(ctx, damageID)
		if err != nil {
			return err
		}
		if d.Status != damage.StatusPending {
			return d.Approve()
		}

		products, err := s.lockProducts(ctx, []id.ID{d.ProductID})
		if err != nil {
			return err
		}
		p := products[d.ProductID]
		at := d.EffectiveLocation(p.Origin())

		if err := s.lockBalances(ctx, []id.ID{p.ID}, at); err != nil {
			return err
		}
		if err := s.ensureAvailable(ctx, p, at, d.Quantity); err != nil {
			return err
		}

		if err := d.Approve(); err != nil {
			return err
		}
		if err := s.damages.UpdateStatus(ctx, d); err != nil {
			return err
		}
		return s.applyDamage(ctx, p, d)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "damage approved", "damage_id", d.ID)
	return d, nil
}

// RejectDamage moves a pending damage to rejected. There is no stock effect.
func (s *Service) RejectDamage(ctx context.Context, damageID id.ID) (*damage.Damage, error) {
	var d *damage.Damage

	err := s.inTx(ctx, OpRejectDamage, func(ctx context.Context) error {
		var err error
		d, err = s.damages.GetForUpdate(ctx, damageID)
		if err != nil {
			return err
		}
		if err := d.Reject(); err != nil {
			return err
		}
		return s.damages.UpdateStatus(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "damage rejected", "damage_id", d.ID)
	return d, nil
}

// applyDamage books an approved damage in the register and on the product counters.
func (s *Service) applyDamage(ctx context.Context, p *product.Product, d *damage.Damage) error {
	if err := s.register.RecordMovements(ctx, d.Movements(p.Origin())); err != nil {
		return err
	}
	p.ApplyDamage(d.Quantity)
	return s.products.UpdateCounters(ctx, p)
}
