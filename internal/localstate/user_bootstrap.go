package localstate

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/PIS-2020-2021/PIS/internal/model"
	"github.com/PIS-2020-2021/PIS/internal/store"
)

const defaultMail = "dev@localhost"

// EnsureDefaultUser creates userID with its default Ambito when the store has
// no such user. It reports whether anything was created.
func EnsureDefaultUser(ctx context.Context, st store.Store, userID string) (bool, error) {
	_, err := st.Users().Get(ctx, userID)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, model.ErrNotFound) {
		return false, err
	}

	u := &model.User{ID: userID, Mail: defaultMail, Name: "Local", LastName: "Developer"}
	if err := st.Users().Save(ctx, u); err != nil {
		return false, err
	}
	a := model.NewAmbito(model.DefaultAmbitoName, model.DefaultAmbitoColor)
	a.SetID(uuid.NewString())
	u.AddAmbito(a)
	if err := st.Ambitos().Save(ctx, a); err != nil {
		return false, err
	}
	return true, nil
}
