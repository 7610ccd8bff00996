// Package config defines the runtime configuration shared by the CLI and the
// API server.
//
// [Load] merges built-in defaults, an optional YAML file and SWITCHYARD_*
// environment variables into a [Config]. The legacy variable names used by
// the Ansible playbooks (NETBOX_API, DNAC_HOST, GOOGLE_API_KEY,
// GITLAB_API, ...) are honoured as fallbacks so existing CI jobs keep working.
//
// The resulting struct is passed explicitly to every component constructor;
// nothing in the module reads configuration from globals.
package config
