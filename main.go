package main

import (
	"flag"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"warbler/crud"
	"warbler/http"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Pick up a .env file if one exists, then load configuration from a
	// .config.json file if present, otherwise use the default dev setup.
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using system environment variables")
	}
	config := LoadConfig(*productionBool)

	if config.IsProd() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Open a database connection and execute migrations.
	db := NewDB(config.Database.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper),
		crud.WithMessage(),
		crud.WithFollow(),
		crud.WithLike(),
		crud.WithOAuth(),
	)
	must(err)

	// Create an oauth config object for doing oauth with Github,
	// if credentials are configured.
	var githubOAuth *oauth2.Config
	if config.Github.ID != "" {
		githubOAuth = &oauth2.Config{
			ClientID:     config.Github.ID,
			ClientSecret: config.Github.Secret,
			RedirectURL:  config.Github.RedirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}
	}

	// Set up a webserver.
	server := http.NewServer(http.ServerConfig{
		SessionKey:  config.SessionKey,
		CSRFKey:     config.CSRFKey,
		CSRFEnabled: config.IsProd(),
		GitHub:      githubOAuth,
	}, services)

	// Serve the app.
	server.Run(config.Port)
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
