// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package display

import (
	"fmt"
	"strings"

	"github.com/platform-engineering-labs/stackdeploy"
)

func PrintBanner() {
	fmt.Println(LightBlue(strings.Replace(Banner, "version", stackdeploy.Version, 1)))
}

func Warning(msg string) {
	fmt.Print(Gold(fmt.Sprintf("Warning: %s\n", msg)))
}

func Links(docLinkName string, deepLinkName string) string {
	deepLink := CodeRoot + "#readme"
	if deepLinkName != "" {
		deepLink = CodeRoot + "/blob/main/docs/" + deepLinkName + ".md"
	}

	return "\n" + Gold("Code: ") + CodeRoot +
		"\n" + Gold(fmt.Sprintf("%s: ", docLinkName)) + deepLink +
		"\n" + Gold("Bugs: ") + CodeRoot + "/issues"
}
