// Package main mints app tokens for calling the broker locally. Tokens are
// signed with the dev key unless -key or PBD_APP_TOKEN_KEY says otherwise.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"pbd/internal/apptoken"
	"pbd/internal/platform/config"
	"pbd/pkg/secrets"
)

type tokenOutput struct {
	Token     string            `json:"token"`
	AppID     string            `json:"app_id"`
	ExpiresIn string            `json:"expires_in"`
	Usage     map[string]string `json:"usage"`
}

type verifyOutput struct {
	Valid     bool   `json:"valid"`
	AppID     string `json:"app_id,omitempty"`
	Env       string `json:"env,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	Error     string `json:"error,omitempty"`
}

func main() {
	appCmd := flag.NewFlagSet("app", flag.ExitOnError)
	appID := appCmd.String("app-id", "com.example.app", "Package name the token attributes calls to")
	appTTL := appCmd.Duration("ttl", 24*time.Hour, "Token time-to-live")
	appKey := appCmd.String("key", defaultKey(), "Signing key")
	appEnv := appCmd.String("env", "dev", "Environment claim")
	appJSON := appCmd.Bool("json", false, "Output as JSON")

	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	verifyKey := verifyCmd.String("key", defaultKey(), "Signing key")

	keyCmd := flag.NewFlagSet("key", flag.ExitOnError)
	keyBytes := keyCmd.Int("bytes", secrets.MinKeyBytes, "Key length in bytes")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "app":
		_ = appCmd.Parse(os.Args[2:])
		generateAppToken(*appID, *appTTL, *appKey, *appEnv, *appJSON)
	case "verify":
		_ = verifyCmd.Parse(os.Args[2:])
		if verifyCmd.NArg() != 1 {
			fmt.Fprintln(os.Stderr, "verify takes exactly one token")
			os.Exit(1)
		}
		verifyToken(verifyCmd.Arg(0), *verifyKey)
	case "key":
		_ = keyCmd.Parse(os.Args[2:])
		generateKey(*keyBytes)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func defaultKey() string {
	if k := os.Getenv("PBD_APP_TOKEN_KEY"); k != "" {
		return k
	}
	return config.DevAppTokenKey
}

func printUsage() {
	fmt.Println(`tokengen - mint app tokens for the privacy broker

Usage:
  tokengen <command> [flags]

Commands:
  app       Mint a token for an app
  verify    Check a token and print its claims
  key       Generate a signing key for PBD_APP_TOKEN_KEY

Examples:
  tokengen app -app-id com.example.weather
  tokengen app -app-id com.example.weather -ttl 1h -json
  tokengen verify eyJhbGciOi...
  export PBD_APP_TOKEN_KEY=$(tokengen key)

  curl -H "Authorization: Bearer $(tokengen app -app-id com.example.weather)" \
       localhost:8080/v1/identifiers/DeviceId`)
}

func generateAppToken(appID string, ttl time.Duration, key, env string, asJSON bool) {
	svc := apptoken.NewService(key, apptoken.Issuer, ttl)
	svc.SetEnv(env)

	token, err := svc.Issue(context.Background(), appID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error minting token: %v\n", err)
		os.Exit(1)
	}

	if !asJSON {
		fmt.Println(token)
		return
	}
	printJSON(tokenOutput{
		Token:     token,
		AppID:     appID,
		ExpiresIn: ttl.String(),
		Usage: map[string]string{
			"header": "Authorization: Bearer " + token,
		},
	})
}

func verifyToken(token, key string) {
	claims, err := apptoken.NewService(key, apptoken.Issuer, 0).Validate(token)
	if err != nil {
		printJSON(verifyOutput{Valid: false, Error: err.Error()})
		os.Exit(1)
	}
	printJSON(verifyOutput{
		Valid:     true,
		AppID:     claims.Subject,
		Env:       claims.Env,
		ExpiresAt: claims.ExpiresAt.Time.UTC().Format(time.RFC3339),
	})
}

func generateKey(n int) {
	key, err := secrets.Generate(n)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating key: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(key)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}
