package databases

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"

	"github.com/pa-prabumulih/sicantik-api/models"
)

const adminCollectionName = "admin_users"

// Reference credential pair for a fresh install. ADMIN_BOOTSTRAP_USERNAME and
// ADMIN_BOOTSTRAP_PASSWORD override these; the defaults exist so an archive
// office can log in before any account management happens.
const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "adminn"
)

// AdminDatabase defines the interface for admin user operations
type AdminDatabase interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error)
	InsertOne(ctx context.Context, admin models.AdminUser, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error)
}

type adminDatabase struct {
	db DatabaseHelper
}

// NewAdminDatabase creates a new admin database wrapper
func NewAdminDatabase(db DatabaseHelper) AdminDatabase {
	return &adminDatabase{db: db}
}

func (a *adminDatabase) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*models.AdminUser, error) {
	admin := &models.AdminUser{}
	err := a.db.Collection(adminCollectionName).FindOne(ctx, filter, opts...).Decode(&admin)
	if err != nil {
		return nil, err
	}
	return admin, nil
}

func (a *adminDatabase) InsertOne(ctx context.Context, admin models.AdminUser, opts ...*options.InsertOneOptions) (InsertOneResultHelper, error) {
	return a.db.Collection(adminCollectionName).InsertOne(ctx, admin, opts...), nil
}

// BootstrapCredentials returns the configured bootstrap credential pair,
// falling back to the reference defaults.
func BootstrapCredentials() (string, string) {
	username := strings.TrimSpace(strings.ToLower(os.Getenv("ADMIN_BOOTSTRAP_USERNAME")))
	if username == "" {
		username = defaultAdminUsername
	}
	password := os.Getenv("ADMIN_BOOTSTRAP_PASSWORD")
	if password == "" {
		password = defaultAdminPassword
	}
	return username, password
}

// EnsureBootstrapAdmin makes sure at least one admin account exists,
// bcrypt-hashing the bootstrap credential on first run.
func EnsureBootstrapAdmin(db DatabaseHelper) error {
	username, password := BootstrapCredentials()

	ctx := context.Background()
	err := db.Collection(adminCollectionName).FindOne(ctx, bson.M{"username": username}).Decode(&struct{}{})
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	now := primitive.NewDateTimeFromTime(time.Now())
	admin := models.AdminUser{
		Username:     username,
		PasswordHash: string(hash),
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	db.Collection(adminCollectionName).InsertOne(ctx, admin)
	return nil
}
