// Package config loads the compositor's YAML configuration.
//
// Defaults cover every setting, so a configuration file only lists what it
// changes. Compositing parameters are grouped into named profiles; catalog,
// square and web are built in and mirror the three classic output styles.
//
// Example:
//
//	default_profile: catalog
//	matte:
//	  white_threshold: 245
//	output:
//	  dir: out
//	  background: "#f8f8f8"
//	profiles:
//	  banner:
//	    relative: {center_x: 0.5, center_y: 0.6, max_width: 0.9, max_height: 0.5}
//	    canvas: {width: 1200, height: 400}
//	    margin: 10
//	    format: png
//	    prefix: banner_
package config
