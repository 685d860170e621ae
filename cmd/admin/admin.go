// Admin runs maintenance commands against the storefront database.
//
//	admin migrate
//	admin useradd <name> <email> <password>
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/irsalhamdi/storefront/core/claims"
	"github.com/irsalhamdi/storefront/core/user"
	"github.com/irsalhamdi/storefront/core/user/stores/userdb"
	"github.com/irsalhamdi/storefront/database"
	"github.com/irsalhamdi/storefront/validate"
	"github.com/sirupsen/logrus"
)

var errUsage = errors.New("usage: admin migrate | admin useradd <name> <email> <password>")

type config struct {
	Args conf.Args
	DB database.Config
}

func main() {
	log := logrus.New()
	log.SetOutput(os.Stdout)

	if err := run(log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(log *logrus.Logger) error {
	const prefix = "STORE"
	var cfg config
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			fmt.Println(errUsage)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	db, err := database.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to open db connection: %w", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	switch cfg.Args.Num(0) {
	case "migrate":
		if err := database.Migrate(db); err != nil {
			return fmt.Errorf("migrating: %w", err)
		}
		log.Info("migrations complete")
		return nil

	case "useradd":
		nu := user.UserNew{
			Name:     cfg.Args.Num(1),
			Email:    cfg.Args.Num(2),
			Role:     claims.RoleAdmin,
			Password: cfg.Args.Num(3),
		}
		if err := validate.Check(nu); err != nil {
			return fmt.Errorf("%w: %v", errUsage, err)
		}

		uc := user.NewCore(log, userdb.NewStore(log, db))
		u, err := uc.Create(ctx, nu)
		if err != nil {
			return fmt.Errorf("creating admin: %w", err)
		}
		log.WithField("user_id", u.ID).Info("admin created")
		return nil
	}

	return errUsage
}
