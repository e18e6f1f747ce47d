package darasa_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/darasahub/darasa"
	"github.com/darasahub/darasa/core/access"
	"github.com/darasahub/darasa/core/material"
	"github.com/darasahub/darasa/core/profile"
	dummyauth "github.com/darasahub/darasa/services/auth/dummy"
	dummydb "github.com/darasahub/darasa/storage/database/dummy"
	"github.com/darasahub/darasa/tests"
)

type fixture struct {
	portal       *darasa.Portal
	provider     *dummyauth.Provider
	profileRepo  profile.Repository
	materialRepo material.Repository
}

func setup(t *testing.T) *fixture {
	t.Helper()
	db, err := dummydb.Open()
	require.NoError(t, err)

	provider := dummyauth.NewProvider()
	profileRepo := dummydb.NewProfileRepository(db)
	materialRepo := dummydb.NewMaterialRepository(db)
	portal := darasa.NewPortal(darasa.Options{
		Conf:            testutil.NewConfig(),
		Logger:          testutil.NewLogger(),
		SessionProvider: provider,
		ProfileRepo:     profileRepo,
		MaterialRepo:    materialRepo,
	})
	t.Cleanup(portal.Close)
	return &fixture{
		portal:       portal,
		provider:     provider,
		profileRepo:  profileRepo,
		materialRepo: materialRepo,
	}
}

func TestPortalAdmitWithoutSession(t *testing.T) {
	fx := setup(t)

	_, decision, err := fx.portal.Admit(context.Background(), profile.RoleTeacher)
	require.NoError(t, err)
	assert.False(t, decision.Allow)
	assert.Equal(t, access.SurfaceLogin, decision.RedirectTo)
}

func TestPortalOnboardingFlow(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()
	fx.provider.SignIn("u1", "ann@test.test")

	// fresh identity, no profile yet
	_, _, err := fx.portal.Admit(ctx, profile.RoleTeacher)
	require.Equal(t, profile.ErrNeedsOnboarding, errors.Cause(err))

	prof, home, err := fx.portal.Onboard(ctx, profile.NewProfile{Name: "Ann", Age: 21, Role: profile.RoleStudent})
	require.NoError(t, err)
	assert.Equal(t, "Ann", prof.Name)
	assert.Equal(t, access.SurfaceStudent, home)

	// the onboarded profile is served from cache and rules on access
	prof, decision, err := fx.portal.Admit(ctx, profile.RoleTeacher)
	require.NoError(t, err)
	assert.Equal(t, "Ann", prof.Name)
	assert.False(t, decision.Allow)
	assert.Equal(t, access.SurfaceStudent, decision.RedirectTo)

	_, decision, err = fx.portal.Admit(ctx, profile.RoleStudent)
	require.NoError(t, err)
	assert.True(t, decision.Allow)
}

func TestPortalBrowse(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	testutil.CreateProfile(t, fx.profileRepo, "t1", "Asha", 34, profile.RoleTeacher)
	testutil.CreateMaterial(t, fx.materialRepo, "t1", "Algebra", "intro", "https://a.test")
	testutil.CreateMaterial(t, fx.materialRepo, "t1", "algebra", "advanced", "https://b.test")
	testutil.CreateMaterial(t, fx.materialRepo, "t1", "Geometry", "", "https://c.test")

	groups, attr, err := fx.portal.Browse(ctx)
	require.NoError(t, err)

	require.Len(t, groups, 2)
	assert.Equal(t, "algebra", groups[0].Key)
	assert.Len(t, groups[0].Items, 2)
	assert.Equal(t, "geometry", groups[1].Key)

	name, ok := attr.OwnerName("t1")
	require.True(t, ok)
	assert.Equal(t, "Asha", name)
}

func TestPortalOwnedMaterials(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	testutil.CreateMaterial(t, fx.materialRepo, "t1", "Algebra", "", "")
	testutil.CreateMaterial(t, fx.materialRepo, "t2", "Biology", "", "")

	_, err := fx.portal.OwnedMaterials(ctx)
	require.Error(t, err, "OwnedMaterials must require a session")

	fx.provider.SignIn("t1", "asha@test.test")
	owned, err := fx.portal.OwnedMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "Algebra", owned[0].Title)
}

func TestPortalWriteThenBrowse(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	fx.provider.SignIn("t1", "asha@test.test")
	_, _, err := fx.portal.Onboard(ctx, profile.NewProfile{Name: "Asha", Age: 34, Role: profile.RoleTeacher})
	require.NoError(t, err)

	// prime the catalogue cache with an empty result
	groups, _, err := fx.portal.Browse(ctx)
	require.NoError(t, err)
	require.Empty(t, groups)

	created, err := fx.portal.Coordinator.Create(ctx, material.Draft{Title: "Algebra", URL: "https://a.test"})
	require.NoError(t, err)

	// the write invalidated the catalogue, so browsing shows it immediately
	groups, attr, err := fx.portal.Browse(ctx)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, created.ID, groups[0].Items[0].ID)

	name, ok := attr.OwnerName("t1")
	require.True(t, ok)
	assert.Equal(t, "Asha", name)
}

func TestPortalSignOutResetsCaches(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	fx.provider.SignIn("u1", "ann@test.test")
	_, _, err := fx.portal.Onboard(ctx, profile.NewProfile{Name: "Ann", Age: 21, Role: profile.RoleStudent})
	require.NoError(t, err)

	_, ok := fx.portal.Profiles.Peek("u1")
	require.True(t, ok)

	require.NoError(t, fx.portal.SignOut(ctx))

	_, ok = fx.portal.Profiles.Peek("u1")
	assert.False(t, ok, "profile cache must not survive sign-out")
	_, decision, err := fx.portal.Admit(ctx, profile.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, access.SurfaceLogin, decision.RedirectTo)
}
