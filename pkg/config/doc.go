/*
Package config manages configuration parsing and validation for stamprename.

	            +-------------+
	            |   Config    |
	            | (Settings)  |
	            +------+------+
	                   |
	      +------------+------------+
	      |            |            |
	+-----+----+ +-----+----+ +-----+----+
	|   YAML   | |   HCL    | |   JSON   |
	|  Parser  | |  Parser  | |  Parser  |
	+----------+ +----------+ +----------+

🎯 Purpose:
- Loads a run description from a file, picking the parser by extension
- Validates field labels, glob patterns, and the regex token
- Fills defaults (batch size 10, parallelism 4, separator "_", include everything)
- Resolves relative source and export paths against the config file

🔍 Example:

	source = "incoming"
	export = "renamed"
	batch_size = 20

	overrides = {
	  "Quantity" = "1"
	}

	naming {
	  fields = ["Order Number", "Material", "Quantity"]
	  replacement {
	    old = " "
	    new = "-"
	  }
	}

	preserve {
	  enabled = true
	  group "cutting" {
	    fields    = ["Quantity", "Dimensions"]
	    preserved = true
	  }
	}

	stamp {
	  command = ["layerstamp", "--in", "{src}", "--out", "{dst}", "--layer", "{layer}"]
	}

Loading:

	cfg, err := config.Load(ctx, "stamprename.hcl")
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}
*/
package config
