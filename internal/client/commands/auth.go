package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"worldforge/internal/client/api"
	"worldforge/internal/client/display"

	"golang.org/x/term"
)

func (r *Registry) registerAuthCommands() {
	r.Register(&Command{
		Name:        "register",
		ShortName:   "r",
		Description: "Register a new user",
		Usage:       "register [username] [password]",
		Handler:     registerHandler,
	})

	r.Register(&Command{
		Name:        "login",
		ShortName:   "l",
		Description: "Login with credentials",
		Usage:       "login [username] [password]",
		Handler:     loginHandler,
	})

	r.Register(&Command{
		Name:        "logout",
		ShortName:   "q",
		Description: "End the session",
		Usage:       "logout",
		Handler:     logoutHandler,
	})

	r.Register(&Command{
		Name:        "whoami",
		ShortName:   "i",
		Description: "Show current user",
		Usage:       "whoami",
		Handler:     whoamiHandler,
	})
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

// credentials takes username and password from args, prompting for what is missing
func credentials(args []string) (string, string, error) {
	var username, password string
	if len(args) > 0 {
		username = args[0]
	} else {
		scanner := bufio.NewScanner(os.Stdin)
		fmt.Print(display.Yellow + "Username: " + display.Reset)
		scanner.Scan()
		username = strings.TrimSpace(scanner.Text())
	}

	if len(args) > 1 {
		password = args[1]
	} else {
		var err error
		password, err = readPassword(display.Yellow + "Password: " + display.Reset)
		if err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

func startSession(s Session, resp *api.AuthResponse, verb string) {
	s.SetAuth(resp.Token, resp.UserID, resp.Username)

	fmt.Printf("%s%s successfully%s\n", display.Green, verb, display.Reset)
	fmt.Printf("User ID: %s\n", resp.UserID)
	fmt.Printf("Username: %s\n", resp.Username)
}

func registerHandler(s Session, args []string) error {
	username, password, err := credentials(args)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Register(username, password)
	if err != nil {
		return err
	}
	startSession(s, resp, "Registered")
	return nil
}

func loginHandler(s Session, args []string) error {
	username, password, err := credentials(args)
	if err != nil {
		return err
	}

	resp, err := s.GetClient().Login(username, password)
	if err != nil {
		return err
	}
	startSession(s, resp, "Logged in")
	return nil
}

func logoutHandler(s Session, args []string) error {
	if s.GetAuthToken() != "" {
		if err := s.GetClient().Logout(); err != nil {
			fmt.Printf("%sServer logout failed: %s%s\n", display.Yellow, err.Error(), display.Reset)
		}
	}
	s.SetAuth("", "", "")

	fmt.Printf("%sLogged out%s\n", display.Green, display.Reset)
	return nil
}

func whoamiHandler(s Session, args []string) error {
	if s.GetAuthToken() == "" {
		fmt.Printf("%sNot authenticated%s\n", display.Yellow, display.Reset)
		return nil
	}

	user, err := s.GetClient().GetCurrentUser()
	if err != nil {
		return err
	}

	fmt.Printf("%sCurrent User:%s\n", display.Cyan, display.Reset)
	fmt.Printf("  User ID:  %s\n", user.UserID)
	fmt.Printf("  Username: %s\n", user.Username)
	fmt.Printf("  Created:  %s\n", user.CreatedAt.Format("2006-01-02 15:04:05"))
	if user.LastLoginAt != nil {
		fmt.Printf("  Last Login: %s\n", user.LastLoginAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
