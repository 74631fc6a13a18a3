package templating

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cudomain "github.com/corvusHold/outreach/internal/companyusers/domain"
	"github.com/corvusHold/outreach/internal/platform/ordered"
)

func TestSubstitute(t *testing.T) {
	rec := ordered.New(ordered.Pair{Key: "name", Value: "Ann"}, ordered.Pair{Key: "id", Value: "7"})
	assert.Equal(t, "Hello Ann, your id is 7", Substitute("Hello #name, your id is #id", rec))
}

func TestSubstitute_ReplacesEveryOccurrenceLiterally(t *testing.T) {
	rec := ordered.New(ordered.Pair{Key: "a.b", Value: "X"}, ordered.Pair{Key: "n", Value: json.Number("3")})
	assert.Equal(t, "X X #aab 3", Substitute("#a.b #a.b #aab #n", rec))
}

func TestSubstitute_CollisionFollowsRecordOrder(t *testing.T) {
	idFirst := ordered.New(ordered.Pair{Key: "id", Value: "7"}, ordered.Pair{Key: "idNumber", Value: "X-1"})
	assert.Equal(t, "7Number", Substitute("#idNumber", idFirst))

	longFirst := ordered.New(ordered.Pair{Key: "idNumber", Value: "X-1"}, ordered.Pair{Key: "id", Value: "7"})
	assert.Equal(t, "X-1", Substitute("#idNumber", longFirst))
}

func TestSubstitute_UnknownPlaceholderUntouched(t *testing.T) {
	assert.Equal(t, "Hi #who", Substitute("Hi #who", ordered.New()))
}

type records map[string]cudomain.CompanyUser

func (r records) FindByEmail(_ context.Context, _ uuid.UUID, email string) (cudomain.CompanyUser, error) {
	u, ok := r[email]
	if !ok {
		return cudomain.CompanyUser{}, cudomain.ErrUserNotFound
	}
	return u, nil
}

func TestEngine_SubstituteFor(t *testing.T) {
	id, tid := uuid.New(), uuid.New()
	e := NewEngine(records{"ann@x.io": {
		ID:        id,
		CompanyID: tid,
		Fields:    ordered.New(ordered.Pair{Key: "name", Value: "Ann"}, ordered.Pair{Key: "email", Value: "ann@x.io"}),
	}})

	out, err := e.SubstituteFor(context.Background(), tid, "ann@x.io", "#name <#email> #id @ #companyId")
	require.NoError(t, err)
	assert.Equal(t, "Ann <ann@x.io> "+id.String()+" @ "+tid.String(), out)

	_, err = e.SubstituteFor(context.Background(), tid, "bob@x.io", "hi")
	assert.ErrorIs(t, err, cudomain.ErrUserNotFound)
}
