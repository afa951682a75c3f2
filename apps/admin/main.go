package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/academia/apps"
	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/analytics"
	"github.com/trezcool/academia/core/catalog"
	"github.com/trezcool/academia/core/profile"
)

func main() {
	logger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	conf := core.NewConfig()

	// set up DB
	stores, err := apps.OpenStores(context.Background(), conf)
	if err != nil {
		logger.Fatalf("setting up database: %v", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	profile.InitValidators(validate, translator)

	catalogSvc := catalog.NewService(stores.Catalog)

	// start CLI
	cli := commandLine{
		conf:         conf,
		profileSvc:   profile.NewService(stores.Profiles),
		catalogSvc:   catalogSvc,
		analyticsSvc: analytics.NewService(stores.Profiles, catalogSvc, stores.Progress, stores.Comments),
		validate:     validate,
		out:          os.Stdout,
	}
	if db := stores.DB(); db != nil {
		cli.db = db.DB
	}

	err = cli.run(os.Args)
	if cerr := stores.Close(); cerr != nil {
		logger.Printf("closing database: %v", cerr)
	}
	if err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", core.TranslateValidationErrors(err, translator))
		}
		os.Exit(1)
	}
}
