package main

import (
	"fmt"
	"os"
	"strings"
)

// preflight sanity-checks the environment before starting the API.
func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	admin := strings.TrimSpace(os.Getenv("AUTH_ADMIN_KEYS"))
	pub := strings.TrimSpace(os.Getenv("AUTH_PUBLIC_KEYS"))
	addr := strings.TrimSpace(os.Getenv("SERVER_ADDR"))
	db := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	shot := strings.TrimSpace(os.Getenv("PROBES_SCREENSHOT_ENDPOINT"))
	slack := strings.TrimSpace(os.Getenv("ALERTS_SLACK_WEBHOOK"))

	if admin == "" {
		fail("AUTH_ADMIN_KEYS is empty (check-trigger routes will 403).")
	}
	if pub == "" {
		fail("AUTH_PUBLIC_KEYS is empty (read routes will 401).")
	}

	for name, v := range map[string]string{"AUTH_ADMIN_KEYS": admin, "AUTH_PUBLIC_KEYS": pub} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if addr == "" {
		warn("SERVER_ADDR is empty; the default bind address will be used.")
	} else {
		ok("SERVER_ADDR=" + addr)
	}

	if db == "" {
		warn("DATABASE_URL empty — check history will live in memory only.")
	} else {
		ok("DATABASE_URL present")
	}

	if shot == "" {
		warn("PROBES_SCREENSHOT_ENDPOINT empty — screenshot checks will report failure.")
	} else {
		ok("PROBES_SCREENSHOT_ENDPOINT=" + shot)
	}

	if slack == "" {
		warn("ALERTS_SLACK_WEBHOOK empty — verdict transitions will not be announced.")
	} else {
		ok("ALERTS_SLACK_WEBHOOK present")
	}

	ok("preflight passed")
}
