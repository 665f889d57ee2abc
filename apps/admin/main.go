package main

import (
	"log"
	"os"

	"github.com/jmoiron/sqlx"

	"github.com/maktabuz/maktab/core"
	"github.com/maktabuz/maktab/storage/database"
	sqlxrepos "github.com/maktabuz/maktab/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	cli := commandLine{conf: conf}

	// createdb runs before a connection to the app DB can be made
	if len(os.Args) > 1 && os.Args[1] == "createdb" {
		errAndDie(database.CreateIfNotExist(conf))
		return
	}

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(db.Ping())

	cli.db = db
	cli.usrRepo = sqlxrepos.NewUserRepository(sqlx.NewDb(db, "postgres"))

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
