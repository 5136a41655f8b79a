// Package config loads process configuration from the environment.
//
// Two variables are required: CLIENT_SECRET_PATH points at the OAuth client
// secret JSON downloaded from the Google Cloud console and FOLDER_ID scopes
// file listing and creation to one Drive folder. Everything else has a
// default.
package config
