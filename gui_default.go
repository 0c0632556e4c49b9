//go:build !console

package main

import (
	"fmt"

	webview "github.com/webview/webview_go"
)

// runEmbeddedUI starts the web server and opens an embedded browser window
func runEmbeddedUI(configFile string) error {
	config, err := LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	// Embedded server always binds loopback on a free port
	ws := NewWebServer(config, "localhost:0", NewLogger(config.Log.Env))

	url, cleanup, err := ws.StartForEmbedded()
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer cleanup()

	// Create webview window (false = no debug mode)
	w := webview.New(false)
	if w == nil {
		return fmt.Errorf("could not create webview window")
	}
	defer w.Destroy()

	w.SetTitle(config.ReportOptions().Title)
	w.SetSize(1280, 860, webview.HintNone)
	w.Navigate(url)

	// Run blocks until window is closed
	w.Run()

	return nil
}

// runGUI starts the graphical user interface (uses embedded browser)
func runGUI(configFile string) error {
	return runEmbeddedUI(configFile)
}
