package packstream_test

import (
	"fmt"

	"github.com/justicz/packstream"
)

func ExampleEncode() {
	b, err := packstream.Encode(packstream.Map{{Key: "A", Value: packstream.Int(1)}})
	if err != nil {
		panic(err)
	}
	fmt.Printf("% X\n", b)
	// Output: A1 81 41 01
}

func ExampleDecode() {
	v, err := packstream.Decode([]byte{0x93, 0x01, 0xC1, 0x40, 0x00, 0xCC, 0xCC, 0xCC, 0xCC, 0xCC, 0xCD, 0x85, 't', 'h', 'r', 'e', 'e'})
	if err != nil {
		panic(err)
	}
	fmt.Println(packstream.ToNative(v))
	// Output: [1 2.1 three]
}

func ExampleMarshal() {
	type person struct {
		Name string `packstream:"name"`
		Age  int    `packstream:"age"`
	}
	b, err := packstream.Marshal(person{Name: "Ann", Age: 30})
	if err != nil {
		panic(err)
	}
	fmt.Printf("% X\n", b)

	var p person
	if err := packstream.Unmarshal(b, &p); err != nil {
		panic(err)
	}
	fmt.Println(p.Name, p.Age)
	// Output:
	// A2 84 6E 61 6D 65 83 41 6E 6E 83 61 67 65 1E
	// Ann 30
}

func ExampleTotalBytes() {
	b, _ := packstream.Encode(packstream.List{packstream.String("x"), packstream.Int(1000)})
	b = append(b, 0xC0)
	n, _ := packstream.TotalBytes(b)
	fmt.Println(n, len(b))
	// Output: 6 7
}
