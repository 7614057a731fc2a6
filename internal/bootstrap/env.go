package bootstrap

import (
	"log"

	"github.com/joho/godotenv"
)

// Loadenv pulls a local .env into the process environment before viper reads it.
func Loadenv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on system environment variables")
	}
}
