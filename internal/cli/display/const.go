// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package display

const (
	Tool   = "stackdeploy"
	Banner = `
     _             _       _            _
 ___| |_ __ _  ___| | ____| | ___ _ __ | | ___  _   _
/ __| __/ _' |/ __| |/ / _' |/ _ \ '_ \| |/ _ \| | | |
\__ \ || (_| | (__|   < (_| |  __/ |_) | | (_) | |_| |
|___/\__\__,_|\___|_|\_\__,_|\___| .__/|_|\___/ \__, |
                                 |_|            |___/  vversion
`
	CodeRoot = "https://github.com/platform-engineering-labs/stackdeploy"
)
