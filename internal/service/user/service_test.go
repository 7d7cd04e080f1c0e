package user

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carlosapgomes/eqmd-sub007/internal/model"
	"github.com/carlosapgomes/eqmd-sub007/internal/repository"
)

type fakeUserRepo struct {
	repository.UserRepository
	users       map[uuid.UUID]*model.User
	added       map[uuid.UUID][]string
	removed     map[uuid.UUID][]string
	deactivated []uuid.UUID
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	byID := make(map[uuid.UUID]*model.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return &fakeUserRepo{
		users:   byID,
		added:   make(map[uuid.UUID][]string),
		removed: make(map[uuid.UUID][]string),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	user.ID = uuid.New()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Get(_ context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, fmt.Errorf("user not found")
}

func (r *fakeUserRepo) Deactivate(_ context.Context, id uuid.UUID) error {
	r.deactivated = append(r.deactivated, id)
	return nil
}

func (r *fakeUserRepo) SetProfession(_ context.Context, id uuid.UUID, profession model.Profession) error {
	r.users[id].Profession = profession
	return nil
}

func (r *fakeUserRepo) AddToGroup(_ context.Context, id uuid.UUID, group string) error {
	r.added[id] = append(r.added[id], group)
	return nil
}

func (r *fakeUserRepo) RemoveFromGroup(_ context.Context, id uuid.UUID, group string) error {
	r.removed[id] = append(r.removed[id], group)
	return nil
}

type spyInvalidator struct {
	calls []uuid.UUID
}

func (s *spyInvalidator) InvalidateUser(_ context.Context, userID uuid.UUID) {
	s.calls = append(s.calls, userID)
}

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (plainHasher) Compare(hash, password string) error  { return nil }

func TestProvisionJoinsProfessionGroup(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewService(repo, plainHasher{}, &spyInvalidator{})

	created, err := svc.Provision(context.Background(), &model.CreateUserRequest{
		Email:      "nurse@example.org",
		Name:       "Joana Reis",
		Password:   "correct horse",
		Profession: "nurse",
	})
	require.NoError(t, err)

	assert.Equal(t, model.ProfessionNurse, created.Profession)
	assert.True(t, created.IsActive)
	assert.Equal(t, []string{model.GroupNurses}, created.Groups)
	assert.Equal(t, "hashed:correct horse", created.PasswordHash)
}

func TestProvisionRejectsUnknownProfession(t *testing.T) {
	svc := NewService(newFakeUserRepo(), plainHasher{}, &spyInvalidator{})

	_, err := svc.Provision(context.Background(), &model.CreateUserRequest{
		Email:      "x@example.org",
		Name:       "X",
		Password:   "password123",
		Profession: "janitor",
	})
	assert.Error(t, err)
}

func TestDeactivateInvalidatesCachedDecisions(t *testing.T) {
	doctor := &model.User{Profession: model.ProfessionDoctor, IsActive: true}
	doctor.ID = uuid.New()

	repo := newFakeUserRepo(doctor)
	invalidator := &spyInvalidator{}
	svc := NewService(repo, plainHasher{}, invalidator)

	require.NoError(t, svc.Deactivate(context.Background(), doctor.ID))
	assert.Equal(t, []uuid.UUID{doctor.ID}, repo.deactivated)
	assert.Equal(t, []uuid.UUID{doctor.ID}, invalidator.calls, "deactivation must orphan cached decisions")
}

func TestChangeProfessionSwapsGroupsAndInvalidates(t *testing.T) {
	resident := &model.User{Profession: model.ProfessionResident, IsActive: true}
	resident.ID = uuid.New()

	repo := newFakeUserRepo(resident)
	invalidator := &spyInvalidator{}
	svc := NewService(repo, plainHasher{}, invalidator)

	require.NoError(t, svc.ChangeProfession(context.Background(), resident.ID, model.ProfessionDoctor))

	assert.Equal(t, model.ProfessionDoctor, repo.users[resident.ID].Profession)
	assert.Equal(t, []string{model.GroupResidents}, repo.removed[resident.ID])
	assert.Equal(t, []string{model.GroupDoctors}, repo.added[resident.ID])
	assert.Equal(t, []uuid.UUID{resident.ID}, invalidator.calls)
}

func TestChangeProfessionRejectsUnknown(t *testing.T) {
	svc := NewService(newFakeUserRepo(), plainHasher{}, &spyInvalidator{})
	assert.Error(t, svc.ChangeProfession(context.Background(), uuid.New(), model.ProfessionUnknown))
}

func TestGroupMutationsInvalidate(t *testing.T) {
	nurse := &model.User{Profession: model.ProfessionNurse, IsActive: true}
	nurse.ID = uuid.New()

	repo := newFakeUserRepo(nurse)
	invalidator := &spyInvalidator{}
	svc := NewService(repo, plainHasher{}, invalidator)

	require.NoError(t, svc.AddToGroup(context.Background(), nurse.ID, model.GroupPatientManagers))
	require.NoError(t, svc.RemoveFromGroup(context.Background(), nurse.ID, model.GroupPatientManagers))
	assert.Equal(t, []uuid.UUID{nurse.ID, nurse.ID}, invalidator.calls)
}
