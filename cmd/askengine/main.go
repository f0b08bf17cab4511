package main

import (
	"fmt"
	"os"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(os.Args[2:])
	case "adduser":
		if len(os.Args) < 3 {
			fmt.Fprintln(os.Stderr, "Usage: askengine adduser <login> [subscriber|moderator|administrator]")
			os.Exit(1)
		}
		err = runAddUser(os.Args[2:])
	case "version":
		fmt.Printf("askengine %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`askengine - A question and answer site built with Go, Echo and templ

Usage:
  askengine <command> [arguments]

Commands:
  serve [config.yaml]           Run the web server
  adduser <login> [role]        Create a user (prompts for the password)
  version                       Print the askengine version
  help                          Show this help message

Environment:
  ASKENGINE_CONFIG              Config file used when serve gets no argument
  ASKENGINE_SESSION_SECRET      Session and nonce signing secret
  ASKENGINE_DATABASE_PATH       SQLite database path

Examples:
  askengine serve config.yaml
  askengine adduser alice moderator`)
}
