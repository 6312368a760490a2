// Package setup provides the interactive first-run wizard: it collects the
// backend URL, view settings and login credentials, and writes the yaml
// config file.
package setup

import (
	"fmt"
	"net/url"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/mkfrx/desk/config"
)

var (
	subtle    = lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#383838"}
	highlight = lipgloss.AdaptiveColor{Light: "#874BFD", Dark: "#7D56F4"}
	special   = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Background(highlight).
			Padding(1, 2).
			Bold(true).
			MarginBottom(1)

	stepStyle = lipgloss.NewStyle().
			Foreground(special).
			Bold(true).
			MarginTop(1).
			MarginBottom(0)
)

// CredentialsMode selects between logging into an existing account and
// registering a new one.
type CredentialsMode string

const (
	ModeLogin  CredentialsMode = "login"
	ModeSignup CredentialsMode = "signup"
)

// Credentials is what the wizard collected for authentication. The wizard
// never calls the backend itself; main performs the login.
type Credentials struct {
	Mode     CredentialsMode
	Name     string
	Email    string
	Password string
}

// Run launches the terminal wizard and writes the config to configPath.
func Run(configPath string) (config.Config, Credentials, error) {
	var (
		backendURL   string
		listenAddr   = "127.0.0.1:8742"
		pollStr      = "10s"
		chartPollStr = "5s"
		chartSymbol  = "btcinr"
		creds        Credentials
		mode         string
		confirm      bool
	)

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("MKFRX DESK SETUP"))
	fmt.Println(lipgloss.NewStyle().Foreground(subtle).Render("Connect your terminal to the MKfrx platform.\n"))

	fmt.Println(stepStyle.Render("STEP 1: BACKEND"))
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Base URL of the MKfrx API (e.g. https://api.mkfrx.example)").
				Validate(validateURL).
				Value(&backendURL),
			huh.NewInput().
				Title("Local view address").
				Value(&listenAddr),
		),
	).Run()
	if err != nil {
		return config.Config{}, Credentials{}, err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("MKFRX DESK SETUP"))
	fmt.Println(stepStyle.Render("STEP 2: MARKET VIEW"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Listing poll interval").
				Description("How often the full ticker list refreshes").
				Validate(validateDuration).
				Value(&pollStr),
			huh.NewInput().
				Title("Chart poll interval").
				Validate(validateDuration).
				Value(&chartPollStr),
			huh.NewInput().
				Title("Charted symbol").
				Value(&chartSymbol),
		),
	).Run()
	if err != nil {
		return config.Config{}, Credentials{}, err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("MKFRX DESK SETUP"))
	fmt.Println(stepStyle.Render("STEP 3: ACCOUNT"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Do you have an MKfrx account?").
				Options(
					huh.NewOption("Log in", string(ModeLogin)),
					huh.NewOption("Sign up", string(ModeSignup)),
				).
				Value(&mode),
		),
	).Run()
	if err != nil {
		return config.Config{}, Credentials{}, err
	}
	creds.Mode = CredentialsMode(mode)

	group := []huh.Field{}
	if creds.Mode == ModeSignup {
		group = append(group, huh.NewInput().Title("Name").Value(&creds.Name))
	}
	group = append(group,
		huh.NewInput().Title("Email").Value(&creds.Email),
		huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&creds.Password),
	)
	if err := huh.NewForm(huh.NewGroup(group...)).Run(); err != nil {
		return config.Config{}, Credentials{}, err
	}

	fmt.Print("\033[H\033[2J")
	fmt.Println(headerStyle.Render("MKFRX DESK SETUP"))
	fmt.Println(stepStyle.Render("STEP 4: SAVE"))
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Save configuration to %s?", configPath)).
				Value(&confirm),
		),
	).Run()
	if err != nil {
		return config.Config{}, Credentials{}, err
	}

	poll, _ := time.ParseDuration(pollStr)
	chartPoll, _ := time.ParseDuration(chartPollStr)
	cfg := config.Config{
		BackendURL:        backendURL,
		ListenAddr:        listenAddr,
		PollInterval:      poll,
		ChartPollInterval: chartPoll,
		ChartSymbol:       chartSymbol,
	}

	if confirm {
		if err := cfg.Save(configPath); err != nil {
			return config.Config{}, Credentials{}, fmt.Errorf("write config: %w", err)
		}
		fmt.Println(lipgloss.NewStyle().Foreground(special).Render("Saved " + configPath))
	}

	if err := cfg.Normalize(); err != nil {
		return config.Config{}, Credentials{}, err
	}
	return cfg, creds, nil
}

func validateURL(s string) error {
	if s == "" {
		return fmt.Errorf("backend URL is required")
	}
	if _, err := url.ParseRequestURI(s); err != nil {
		return fmt.Errorf("invalid URL")
	}
	return nil
}

func validateDuration(s string) error {
	if _, err := time.ParseDuration(s); err != nil {
		return fmt.Errorf("invalid duration (e.g. 10s)")
	}
	return nil
}
