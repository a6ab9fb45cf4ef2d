package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/safezone/internal/lib/apperr"
)

func TestIs_MatchesWrappedCopies(t *testing.T) {
	err := fmt.Errorf("subscription.Create: %w", apperr.Wrap(apperr.KindConflict, apperr.CodeDuplicateSubscription, errors.New("unique violation")))

	assert.ErrorIs(t, err, apperr.ErrDuplicateSubscription)
	assert.NotErrorIs(t, err, apperr.ErrDuplicateEmail)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeDuplicateSubscription, apperr.CodeOf(err))
}

func TestKindOf_ForeignError(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
	assert.Equal(t, apperr.CodeInternal, apperr.CodeOf(err))
}

func TestError_Message(t *testing.T) {
	assert.Equal(t, "not_found: alert_not_found", apperr.ErrAlertNotFound.Error())
	assert.Equal(t, "internal: internal: boom",
		apperr.Wrap(apperr.KindInternal, apperr.CodeInternal, errors.New("boom")).Error())
}
