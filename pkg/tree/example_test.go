package tree_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/teamtree/pkg/tree"
)

func ExampleMap() {
	resp, err := tree.Decode(strings.NewReader(`{
		"success": true,
		"tree": {
			"name": "Root",
			"package": "Gold",
			"children": [
				{"position": "L", "name": "Alice", "earnings": 1200},
				{"position": "R", "name": "Bob"}
			]
		}
	}`))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	root := tree.Map(resp.Tree, tree.UserProfile)
	fmt.Println(root.Name, root.Package)
	fmt.Println("left:", root.Left.Name, root.Left.Metrics.Earnings)
	fmt.Println("right:", root.Right.Name, root.Right.Package)
	fmt.Println("nodes:", root.Count())
	// Output:
	// Root Gold
	// left: Alice 1200
	// right: Bob N/A
	// nodes: 3
}
