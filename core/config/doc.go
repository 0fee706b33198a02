// Package config loads the application configuration from environment
// variables and an optional .env file.
//
// Defaults are declared as struct tags on the partial Config structs of
// each core package and bound into Viper by reflection, so adding a new
// setting only requires adding a tagged field.
package config
