// Package orchestration runs provisioning operations end to end.
//
// A Runner turns an operation request (site, switches, addresses, promote,
// catalog) into provisioning phases, resolves reference records, runs the
// phases under a fresh run journal and archives the resulting report. The
// CLI handlers and the HTTP API both go through a Runner, so a run behaves
// the same whichever surface started it.
//
// # Usage
//
//	runner := orchestration.NewRunner(cfg, store, observer, orchestration.DefaultClients())
//	out, err := runner.CreateSite(ctx, orchestration.SiteInput{...}, commit)
//	fmt.Print(out.Journal.Render(color))
//
// Runs are serialised: a Runner executes one operation at a time.
package orchestration
