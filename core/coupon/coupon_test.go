package coupon

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owais185-web/LuminaLMSPush/tests"
)

func TestRepository_Find(t *testing.T) {
	ctx := context.Background()
	store, _, _ := testutil.NewStore(t)
	repo := NewRepository(store, []Coupon{{Code: "WELCOME20", DiscountPercent: 20}, {Code: "MAGIC50", DiscountPercent: 50}})

	tests := []struct {
		code    string
		want    Coupon
		wantErr error
	}{
		{code: "WELCOME20", want: Coupon{Code: "WELCOME20", DiscountPercent: 20}},
		{code: "welcome20", want: Coupon{Code: "WELCOME20", DiscountPercent: 20}},
		{code: " Magic50 ", want: Coupon{Code: "MAGIC50", DiscountPercent: 50}},
		{code: "POTIONS10", wantErr: ErrNotFound},
		{code: "", wantErr: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			c, err := repo.Find(ctx, tt.code)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c)
		})
	}
	assert.Len(t, repo.GetAll(ctx), 2)
}
