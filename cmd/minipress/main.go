package main

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/minipress/minipress"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "hash-password":
			if len(os.Args) < 3 {
				fmt.Fprintln(os.Stderr, "Usage: minipress hash-password <password>")
				os.Exit(1)
			}
			runHashPassword(os.Args[2])
			return
		case "version":
			fmt.Printf("minipress %s\n", version)
			return
		case "serve":
			// fall through to the server below
		case "help", "-h", "--help":
			printUsage()
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
			printUsage()
			os.Exit(1)
		}
	}

	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	app := minipress.New(minipress.Config{
		Name:        minipress.EnvOr("BLOG_NAME", "Blog"),
		URL:         minipress.EnvOr("BLOG_URL", "http://localhost:3000"),
		Description: minipress.EnvOr("BLOG_DESCRIPTION", ""),
		Author:      minipress.EnvOr("BLOG_AUTHOR", ""),

		Addr:         minipress.EnvOr("BLOG_ADDR", ":3000"),
		DatabasePath: minipress.EnvOr("BLOG_DB", "data/blog.db"),
		StorageRoot:  minipress.EnvOr("BLOG_STORAGE", "wwwroot"),

		PostsPerPage:           envInt("BLOG_POSTS_PER_PAGE", 4),
		CommentsCloseAfterDays: envInt("BLOG_COMMENTS_CLOSE_DAYS", 0),

		AdminUser:         minipress.MustEnv("BLOG_ADMIN_USER"),
		AdminPasswordHash: minipress.MustEnv("BLOG_ADMIN_PASSWORD_HASH"),
		AdminSalt:         minipress.MustEnv("BLOG_ADMIN_SALT"),
		SessionSecret:     minipress.MustEnv("BLOG_SESSION_SECRET"),
		CookieSecure:      os.Getenv("BLOG_COOKIE_SECURE") == "true",
	}, minipress.DefaultViews(), minipress.WithLogger(log))

	defer app.Close()

	if err := app.Start(); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// runHashPassword prints a fresh salt and the matching password hash, ready
// to paste into BLOG_ADMIN_SALT and BLOG_ADMIN_PASSWORD_HASH.
func runHashPassword(password string) {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	saltHex := hex.EncodeToString(salt)
	fmt.Printf("BLOG_ADMIN_SALT=%s\n", saltHex)
	fmt.Printf("BLOG_ADMIN_PASSWORD_HASH=%s\n", minipress.HashPassword(password, saltHex))
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		fmt.Fprintf(os.Stderr, "minipress: %s is not a number: %q\n", key, v)
		os.Exit(1)
	}
	return n
}

func printUsage() {
	fmt.Println(`minipress - a personal blog engine built with Go, Echo, and templ

Usage:
  minipress [command]

Commands:
  serve                    Run the blog server (the default)
  hash-password <pass>     Generate a salt and password hash for the admin user
  version                  Print the minipress version
  help                     Show this help message

The server is configured through environment variables. Required:
  BLOG_ADMIN_USER, BLOG_ADMIN_PASSWORD_HASH, BLOG_ADMIN_SALT, BLOG_SESSION_SECRET`)
}
