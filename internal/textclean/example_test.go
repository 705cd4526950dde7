package textclean_test

import (
	"fmt"

	"mal-ai/internal/textclean"
)

func ExampleNormalize() {
	raw := "  Chapter 1:\tThe CELL\n\nCells are the basic unit of life (mostly)!  "
	fmt.Println(textclean.Normalize(raw))
	// Output: chapter 1 the cell cells are the basic unit of life mostly!
}
