package coupon

import (
	"context"
	"strings"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/storage/kv"
)

const (
	StorageKey = "lumina_coupons"
	Collection = "coupons"
)

var ErrNotFound = errors.New("coupon not found")

type Coupon struct {
	Code            string `json:"code" validate:"required"`
	DiscountPercent int    `json:"discountPercent" validate:"min=0,max=100"`
}

// Repository is a static lookup table: coupons are only seeded.
type Repository struct {
	coll *kv.Collection[Coupon]
}

func NewRepository(store *kv.Store, seed []Coupon) *Repository {
	vala.BeginValidation().Validate(
		vala.IsNotNil(store, "store"),
	).CheckAndPanic()
	return &Repository{coll: kv.NewCollection(store, StorageKey, seed)}
}

func (repo *Repository) GetAll(ctx context.Context) []Coupon {
	return repo.coll.Load(ctx)
}

// Find matches code case-insensitively, ignoring surrounding whitespace.
func (repo *Repository) Find(ctx context.Context, code string) (Coupon, error) {
	code = core.CleanString(code)
	if code == "" {
		return Coupon{}, ErrNotFound
	}
	for _, c := range repo.coll.Load(ctx) {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return Coupon{}, ErrNotFound
}
