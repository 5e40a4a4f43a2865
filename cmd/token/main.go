package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pageza/ai-book/backend/internal/service"
)

// token issues a service token for a front-end, signed with JWT_SECRET
func main() {
	name := flag.String("service", "telegram-bot", "calling service recorded in the token")
	scopes := flag.String("scopes", "", "comma-separated scopes; empty grants all")
	ttl := flag.Duration("ttl", 0, "token lifetime; zero never expires")
	flag.Parse()

	auth, err := service.NewAuthService(os.Getenv("JWT_SECRET"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}

	var scopeList []string
	for _, s := range strings.Split(*scopes, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopeList = append(scopeList, s)
		}
	}

	token, err := auth.GenerateToken(*name, scopeList, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}
