// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

//go:build integration

package postgres_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/tollgate/tollgate/internal/auth"
	authpg "github.com/tollgate/tollgate/internal/auth/postgres"
	"github.com/tollgate/tollgate/internal/store"
)

// setupPostgresContainer starts a PostgreSQL container, runs migrations, and
// returns a connected repository.
func setupPostgresContainer() (*authpg.UserRepository, func(), error) {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("tollgate_test"),
		tcpostgres.WithUsername("tollgate"),
		tcpostgres.WithPassword("tollgate"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	db, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		db.Close()
		_ = container.Terminate(ctx)
	}

	return authpg.NewUserRepository(db.Pool()), cleanup, nil
}

var _ = Describe("UserRepository", func() {
	var repo *authpg.UserRepository
	var cleanup func()

	BeforeEach(func() {
		var err error
		repo, cleanup, err = setupPostgresContainer()
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	newUser := func(username string, email *string) *auth.User {
		user, err := auth.NewUser("", username, "$argon2id$hash", email)
		Expect(err).NotTo(HaveOccurred())
		return user
	}

	Describe("Create", func() {
		It("stores a user and reads it back by ID", func() {
			ctx := context.Background()
			email := "alice@example.com"
			user := newUser("alice", &email)

			Expect(repo.Create(ctx, user)).To(Succeed())

			got, err := repo.GetByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Username).To(Equal("alice"))
			Expect(got.Email).To(HaveValue(Equal(email)))
			Expect(got.Active).To(BeTrue())
		})

		It("rejects a duplicate username", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newUser("alice", nil))).To(Succeed())

			err := repo.Create(ctx, newUser("alice", nil))
			Expect(err).To(MatchError(auth.ErrUsernameTaken))
		})

		It("rejects a duplicate email", func() {
			ctx := context.Background()
			email := "shared@example.com"
			Expect(repo.Create(ctx, newUser("alice", &email))).To(Succeed())

			err := repo.Create(ctx, newUser("bob", &email))
			Expect(err).To(MatchError(auth.ErrEmailTaken))
		})

		It("allows multiple users without email", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newUser("alice", nil))).To(Succeed())
			Expect(repo.Create(ctx, newUser("bob", nil))).To(Succeed())
		})
	})

	Describe("GetByUsernameOrEmail", func() {
		It("finds a user by username", func() {
			ctx := context.Background()
			email := "alice@example.com"
			user := newUser("alice", &email)
			Expect(repo.Create(ctx, user)).To(Succeed())

			got, err := repo.GetByUsernameOrEmail(ctx, "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(user.ID))
		})

		It("finds a user by email", func() {
			ctx := context.Background()
			email := "alice@example.com"
			user := newUser("alice", &email)
			Expect(repo.Create(ctx, user)).To(Succeed())

			got, err := repo.GetByUsernameOrEmail(ctx, email)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(user.ID))
		})

		It("matches case-sensitively", func() {
			ctx := context.Background()
			Expect(repo.Create(ctx, newUser("alice", nil))).To(Succeed())

			_, err := repo.GetByUsernameOrEmail(ctx, "Alice")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})

		It("returns ErrNotFound for an unknown identifier", func() {
			_, err := repo.GetByUsernameOrEmail(context.Background(), "nobody")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})

	Describe("UpdatePasswordHash", func() {
		It("replaces only the stored hash", func() {
			ctx := context.Background()
			user := newUser("alice", nil)
			Expect(repo.Create(ctx, user)).To(Succeed())

			Expect(repo.UpdatePasswordHash(ctx, user.ID, "$argon2id$new")).To(Succeed())

			got, err := repo.GetByID(ctx, user.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.PasswordHash).To(Equal("$argon2id$new"))
			Expect(got.Username).To(Equal("alice"))
		})

		It("returns ErrNotFound for an unknown user", func() {
			err := repo.UpdatePasswordHash(context.Background(), "missing", "$argon2id$new")
			Expect(err).To(MatchError(auth.ErrNotFound))
		})
	})
})
