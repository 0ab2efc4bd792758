/*
Package config loads and validates the classification configuration.

	            +--------------+
	            |    Config    |
	            | (categories) |
	            +------+-------+
	                   |
	     +-------------+-------------+
	     |             |             |
	+----+----+   +----+----+   +----+----+
	|  JSON   |   |  YAML   |   |   HCL   |
	| Parser  |   | Parser  |   | Parser  |
	+---------+   +---------+   +---------+

🎯 Purpose:
- Reads the document that lists every category of the monthly checklist
- Picks a parser by file extension
- Normalizes extensions and expands ~ in paths
- Rejects anything the resolver could not expand later

🔄 Flow:
1. Locate finds the document (explicit path, executable dir, working dir)
2. Load reads and parses it
3. Validate normalizes fields and dry-runs every template
4. Callers get a *Config whose rules never change at runtime

⚡ Failures:
Every error returned by Load and Locate wraps ErrConfig. It is fatal at
startup and is shown to the operator once.

🔍 Example:

	cfg, err := config.Load(ctx, "config.json")
	if err != nil {
		return err
	}
	dir, err := cfg.Resolver().TargetDir(cfg.Items[0].Template(), period)
*/
package config
