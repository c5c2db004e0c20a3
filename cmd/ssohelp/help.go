package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssohelp <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  render     Render the browser setup page to HTML or PDF")
	fmt.Fprintln(w, "  serve      Serve the page, its assets, CA certificate and policies")
	fmt.Fprintln(w, "  check      Run the page bootstrap in headless Chrome")
	fmt.Fprintln(w, "  policy     Print browser policies for the realm domains")
	fmt.Fprintln(w, "  doctor     Check system and configuration")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'ssohelp help <command>' for details on a specific command.")
}

// printCommonFlags prints flags shared by render, serve, check and policy.
func printCommonFlags(w io.Writer) {
	fmt.Fprintln(w, "Realm:")
	fmt.Fprintln(w, "  -r, --realm <s>           Kerberos realm, e.g. EXAMPLE.COM")
	fmt.Fprintln(w, "  -d, --domain <s>          Realm DNS domain (repeatable)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Page:")
	fmt.Fprintln(w, "  -l, --locale <s>          Page locale (en, fr)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w, "  -t, --timeout <d>         Browser timeout (e.g. 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Configuration:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logging")
}

// printRenderUsage prints usage for the render command.
func printRenderUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssohelp render [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Render the browser setup page. HTML output gets its scripts, styles")
	fmt.Fprintln(w, "and icons copied next to it; PDF output inlines styles.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <path>       Output file (default: ssbrowser.html)")
	fmt.Fprintln(w, "      --pdf                 Render to PDF with headless Chrome")
	fmt.Fprintln(w, "      --no-static           Do not copy static files")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssohelp serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve the browser setup page over HTTP.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Routes:")
	fmt.Fprintln(w, "  /ssbrowser.html           Page (?lang=fr, ?bootstrap=off)")
	fmt.Fprintln(w, "  /ssbrowser.pdf            Page as PDF")
	fmt.Fprintln(w, "  /static/*                 Scripts, styles and icons")
	fmt.Fprintln(w, "  /ca.crt                   Realm CA certificate")
	fmt.Fprintln(w, "  /policies/firefox.json    Firefox enterprise policy")
	fmt.Fprintln(w, "  /policies/chrome.json     Chrome managed policy")
	fmt.Fprintln(w, "  /healthz                  Health check")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <addr>         Listen address (default: :8080)")
	fmt.Fprintln(w, "  -w, --workers <n>         Browsers for PDF export (0 = auto)")
	fmt.Fprintln(w, "      --ca-cert <path>      CA certificate file")
	fmt.Fprintln(w, "      --no-pdf              Disable PDF export")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printCheckUsage prints usage for the check command.
func printCheckUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssohelp check [url] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open a page in headless Chrome and run its bootstrap: styles and icons")
	fmt.Fprintln(w, "are added, scripts load one at a time, then the introduction text is")
	fmt.Fprintln(w, "substituted. Without a URL the built-in page is checked.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Exits with 5 when a script fails to load.")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// printPolicyUsage prints usage for the policy command.
func printPolicyUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: ssohelp policy <format> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Print browser settings that allow Kerberos for the realm domains.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Formats:")
	fmt.Fprintln(w, "  firefox                   Enterprise policies.json")
	fmt.Fprintln(w, "  chrome                    Managed policy JSON")
	fmt.Fprintln(w, "  chrome-flag               Command line switch")
	fmt.Fprintln(w, "  about-config              Firefox preferences")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Policy:")
	fmt.Fprintln(w, "      --delegate            Allow credential delegation")
	fmt.Fprintln(w, "      --locked              Prevent users from changing the settings")
	fmt.Fprintln(w)
	printCommonFlags(w)
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "render":
		printRenderUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "check":
		printCheckUsage(env.Stdout)
	case "policy":
		printPolicyUsage(env.Stdout)
	case "doctor":
		fmt.Fprintln(env.Stdout, "Usage: ssohelp doctor [--json]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Check Chrome, environment and configuration.")
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: ssohelp version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: ssohelp help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
