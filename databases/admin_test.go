package databases_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/pa-prabumulih/sicantik-api/databases"
	"github.com/pa-prabumulih/sicantik-api/databases/mocks"
	"github.com/pa-prabumulih/sicantik-api/models"
)

func TestBootstrapCredentialsDefaults(t *testing.T) {
	os.Unsetenv("ADMIN_BOOTSTRAP_USERNAME")
	os.Unsetenv("ADMIN_BOOTSTRAP_PASSWORD")

	username, password := databases.BootstrapCredentials()
	assert.Equal(t, "admin", username)
	assert.Equal(t, "adminn", password)
}

func TestBootstrapCredentialsOverride(t *testing.T) {
	os.Setenv("ADMIN_BOOTSTRAP_USERNAME", "Panitera")
	os.Setenv("ADMIN_BOOTSTRAP_PASSWORD", "rahasia")
	defer os.Unsetenv("ADMIN_BOOTSTRAP_USERNAME")
	defer os.Unsetenv("ADMIN_BOOTSTRAP_PASSWORD")

	username, password := databases.BootstrapCredentials()
	assert.Equal(t, "panitera", username)
	assert.Equal(t, "rahasia", password)
}

func TestAdminDatabase_FindOne(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var collectionHelper databases.CollectionHelper
	var srHelperErr databases.SingleResultHelper
	var srHelperCorrect databases.SingleResultHelper

	dbHelper = &mocks.DatabaseHelper{}
	collectionHelper = &mocks.CollectionHelper{}
	srHelperErr = &mocks.SingleResultHelper{}
	srHelperCorrect = &mocks.SingleResultHelper{}

	srHelperErr.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(errors.New("mocked-error"))

	srHelperCorrect.(*mocks.SingleResultHelper).
		On("Decode", mock.Anything).
		Return(nil).Run(func(args mock.Arguments) {
		arg := args.Get(0).(**models.AdminUser)
		(*arg).Username = "admin"
	})

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": true}).
		Return(srHelperErr)

	collectionHelper.(*mocks.CollectionHelper).
		On("FindOne", context.Background(), bson.M{"error": false}).
		Return(srHelperCorrect)

	dbHelper.(*mocks.DatabaseHelper).
		On("Collection", "admin_users").Return(collectionHelper)

	adminDba := databases.NewAdminDatabase(dbHelper)

	admin, err := adminDba.FindOne(context.Background(), bson.M{"error": true})

	assert.Empty(t, admin)
	assert.EqualError(t, err, "mocked-error")

	admin, err = adminDba.FindOne(context.Background(), bson.M{"error": false})

	assert.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)
}

func TestEnsureBootstrapAdminAlreadyExists(t *testing.T) {
	os.Unsetenv("ADMIN_BOOTSTRAP_USERNAME")
	os.Unsetenv("ADMIN_BOOTSTRAP_PASSWORD")

	srHelper := &mocks.SingleResultHelper{}
	srHelper.On("Decode", mock.Anything).Return(nil)

	collectionHelper := &mocks.CollectionHelper{}
	collectionHelper.On("FindOne", mock.Anything, bson.M{"username": "admin"}).
		Return(srHelper)

	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Collection", "admin_users").Return(collectionHelper)

	assert.NoError(t, databases.EnsureBootstrapAdmin(dbHelper))
	collectionHelper.AssertNotCalled(t, "InsertOne", mock.Anything, mock.Anything)
}

func TestEnsureBootstrapAdminFirstRun(t *testing.T) {
	os.Unsetenv("ADMIN_BOOTSTRAP_USERNAME")
	os.Unsetenv("ADMIN_BOOTSTRAP_PASSWORD")

	srHelper := &mocks.SingleResultHelper{}
	srHelper.On("Decode", mock.Anything).Return(mongo.ErrNoDocuments)

	iorHelper := &mocks.InsertOneResultHelper{}

	collectionHelper := &mocks.CollectionHelper{}
	collectionHelper.On("FindOne", mock.Anything, bson.M{"username": "admin"}).
		Return(srHelper)
	collectionHelper.On("InsertOne", mock.Anything, mock.AnythingOfType("models.AdminUser")).
		Return(iorHelper)

	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Collection", "admin_users").Return(collectionHelper)

	assert.NoError(t, databases.EnsureBootstrapAdmin(dbHelper))
	collectionHelper.AssertCalled(t, "InsertOne", mock.Anything, mock.AnythingOfType("models.AdminUser"))
}

func TestEnsureBootstrapAdminLookupError(t *testing.T) {
	os.Unsetenv("ADMIN_BOOTSTRAP_USERNAME")
	os.Unsetenv("ADMIN_BOOTSTRAP_PASSWORD")

	srHelper := &mocks.SingleResultHelper{}
	srHelper.On("Decode", mock.Anything).Return(errors.New("mocked-error"))

	collectionHelper := &mocks.CollectionHelper{}
	collectionHelper.On("FindOne", mock.Anything, bson.M{"username": "admin"}).
		Return(srHelper)

	dbHelper := &mocks.DatabaseHelper{}
	dbHelper.On("Collection", "admin_users").Return(collectionHelper)

	assert.EqualError(t, databases.EnsureBootstrapAdmin(dbHelper), "mocked-error")
}
