package snapshot_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/kintree/pkg/snapshot"
)

func ExampleReadJSON() {
	in := `{
		"tree": {"id": "lovelace"},
		"focal": {"id": "ada", "first_name": "Ada", "last_name": "Lovelace", "birth_date": "1815-12-10", "death_date": "1852-11-27"},
		"parent1": {"id": "byron", "first_name": "George", "last_name": "Byron", "gender": "male"}
	}`

	s, err := snapshot.ReadJSON(strings.NewReader(in))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(s.Focal.DisplayName(), s.Focal.Years())
	fmt.Println(s.Parent1.DisplayName(), s.Parent1.Sex())
	// Output:
	// Ada Lovelace 1815 - 1852
	// George Byron male
}
