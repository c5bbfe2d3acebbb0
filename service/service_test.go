package service

import (
	"context"
	"testing"
	"time"

	"school-cafe-api/apperr"
	"school-cafe-api/auth"
	"school-cafe-api/events"
	"school-cafe-api/logger"
	"school-cafe-api/models"
	"school-cafe-api/store"
	"school-cafe-api/store/storetest"
)

type testEnv struct {
	st       *store.Store
	svc      *Services
	student  auth.Principal
	student2 auth.Principal
	cook     auth.Principal
	admin    auth.Principal
}

func newTestEnv(t *testing.T, pub events.Publisher) *testEnv {
	t.Helper()
	st := storetest.New(t)
	env := &testEnv{
		st: st,
		svc: New(Deps{
			Store:       st,
			Credentials: auth.NewJWT("test-secret", time.Hour),
			Events:      pub,
			Log:         logger.Discard(),
		}),
	}
	env.student = env.addUser(t, "student1", models.RoleStudent, models.Rubles(1000))
	env.student2 = env.addUser(t, "student2", models.RoleStudent, models.Rubles(1000))
	env.cook = env.addUser(t, "cook1", models.RoleCook, 0)
	env.admin = env.addUser(t, "admin1", models.RoleAdmin, 0)
	return env
}

func (e *testEnv) addUser(t *testing.T, username string, role models.UserRole, balance models.Money) auth.Principal {
	t.Helper()
	u := &models.User{Username: username, PasswordHash: "x", FullName: username, Role: role, ClassName: "9A", Balance: balance}
	if err := e.st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return auth.Principal{UserID: u.ID, Username: u.Username, Role: u.Role}
}

func (e *testEnv) addDish(t *testing.T, name string, price models.Money, qty int) *models.Dish {
	t.Helper()
	d, err := e.svc.Menu.Create(context.Background(), e.admin, DishInput{
		Name:     name,
		Category: models.CategoryLunch,
		Price:    price,
		Quantity: qty,
	})
	if err != nil {
		t.Fatalf("create dish %s: %v", name, err)
	}
	return d
}

func (e *testEnv) balance(t *testing.T, p auth.Principal) models.Money {
	t.Helper()
	u, err := e.st.GetUser(context.Background(), p.UserID)
	if err != nil {
		t.Fatal(err)
	}
	return u.Balance
}

func (e *testEnv) dish(t *testing.T, id uint) *models.Dish {
	t.Helper()
	d, err := e.st.GetDish(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func assertKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if got := apperr.KindOf(err); got != want {
		t.Fatalf("error kind = %q, want %q (err: %v)", got, want, err)
	}
}
