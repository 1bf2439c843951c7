// Jamf is a command-line client for the classic device-management API.
//
// It reads and edits policies and categories, converts documents between
// XML and YAML and keeps policy package baselines in place:
//   - List categories and the policies filed under them
//   - Show a policy and edit its package list
//   - Convert and query XML documents
//   - Enforce a package baseline once or on a schedule
//   - Keep a history of every package change
//
// Usage:
//
//	# List categories whose name contains "Apps"
//	jamf categories --name Apps
//
//	# Show a policy as YAML
//	jamf policy show --name "Install Tools" -o yaml
//
//	# Add a package to a policy
//	jamf policy add-package --id 12 tools-1.2.pkg
//
//	# Enforce a baseline manifest once
//	jamf baseline apply --manifest baseline.yaml
//
//	# Enforce every 15 minutes, reloading the manifest on change
//	jamf baseline run --schedule "@every 15m" --watch
//
//	# Export the change history
//	jamf history export --format csv
//
// The server is configured with --config or the JAMF_URL, JAMF_USER and
// JAMF_PASSWORD environment variables.
package main

func main() {
	Execute()
}
