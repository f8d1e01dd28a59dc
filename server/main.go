// server/main.go
package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/pgxstore"
	"github.com/alexedwards/scs/v2"

	"inkwell/blog"
)

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	// Initialize the database connection.
	blogDB, err := blog.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	log.Println("Successfully connected to the database.")
	if err := blogDB.CreateTables(); err != nil {
		log.Fatalf("Could not create tables: %v", err)
	}

	// Sessions live in the same postgres pool as the content, so a
	// restart does not log everyone out.
	session := scs.New()
	session.Store = pgxstore.New(blogDB.Pool())
	session.Lifetime = time.Duration(cfg.SessionHours) * time.Hour

	// Create the blog handler, injecting the store and sessions.
	blogHandler, err := blog.NewHandlers(blogDB, session, cfg.TemplateGlob)
	if err != nil {
		log.Fatalf("Could not create blog handler: %v", err)
	}

	mux := http.NewServeMux()
	blogHandler.RegisterRoutes(mux)

	log.Printf("Starting blog server on %s", cfg.Addr)
	svr := &http.Server{
		Addr:    cfg.Addr,
		Handler: session.LoadAndSave(blog.RequestLogger(mux)),
	}
	if err := svr.ListenAndServe(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
