package memory

import (
	"context"
	"maps"

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/server/models"
	"github.com/google/uuid"
)

type userRepository struct {
	store *Store
	inTx  bool
}

func (r *userRepository) Create(_ context.Context, user *models.User) (*models.User, error) {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	for _, u := range r.store.users {
		if u.UserName == user.UserName {
			return nil, common.ErrUsernameTaken
		}
		if u.Email == user.Email {
			return nil, common.ErrEmailTaken
		}
	}

	user.ID = uuid.NewString()
	if user.Settings == nil {
		user.Settings = map[string]any{}
	}
	r.store.users[user.ID] = copyUser(user)
	return user, nil
}

func (r *userRepository) find(match func(*models.User) bool) (*models.User, error) {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	for _, u := range r.store.users {
		if match(u) {
			return copyUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepository) GetUserByLogin(_ context.Context, userName string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.UserName == userName })
}

func (r *userRepository) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *userRepository) GetUserByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *userRepository) Update(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	u, ok := r.store.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}

	if upd.UserName != nil {
		for _, other := range r.store.users {
			if other.ID != id && other.UserName == *upd.UserName {
				return nil, common.ErrUsernameTaken
			}
		}
		u.UserName = *upd.UserName
	}
	if upd.Settings != nil {
		u.Settings = maps.Clone(upd.Settings)
	}

	return copyUser(u), nil
}

// Delete removes the user and, like the FK cascade, the user's documents.
func (r *userRepository) Delete(_ context.Context, id string) error {
	unlock := r.store.lock(r.inTx)
	defer unlock()

	if _, ok := r.store.users[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.store.users, id)
	for docID, d := range r.store.docs {
		if d.OwnerID == id {
			delete(r.store.docs, docID)
		}
	}
	return nil
}
