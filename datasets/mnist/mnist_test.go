package mnist

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neurlang/digitnet/errtypes"
)

func csvTable(rows int, labelFirst bool) string {
	var b strings.Builder
	cols := make([]string, 0, Pixels+1)
	if labelFirst {
		cols = append(cols, "label")
	}
	for i := 0; i < Pixels; i++ {
		cols = append(cols, fmt.Sprintf("pixel%d", i))
	}
	if !labelFirst {
		cols = append(cols, "label")
	}
	b.WriteString(strings.Join(cols, ",") + "\n")

	for r := 0; r < rows; r++ {
		fields := make([]string, 0, Pixels+1)
		if labelFirst {
			fields = append(fields, fmt.Sprint(r%10))
		}
		for i := 0; i < Pixels; i++ {
			fields = append(fields, fmt.Sprint((r+i)%256))
		}
		if !labelFirst {
			fields = append(fields, fmt.Sprint(r%10))
		}
		b.WriteString(strings.Join(fields, ",") + "\n")
	}
	return b.String()
}

func TestReadCSV(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(csvTable(1200, true)), Options{Workers: 4})
	require.NoError(t, err)
	assert.Equal(t, 1200, d.Len())
	assert.Equal(t, 3, d.Labels()[1203%1200])
	assert.Equal(t, float32(0), d.Image(0)[0])
	assert.Equal(t, float32(255), d.Image(1)[254])
	assert.Equal(t, float32(1001%256), d.Image(1000)[1])
}

func TestReadCSVLabelLastNormalized(t *testing.T) {
	d, err := ReadCSV(strings.NewReader(csvTable(3, false)), Options{Normalize: true, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, []int{0, 1}, d.Labels())
	assert.InDelta(t, 1.0/255, d.Image(0)[1], 1e-7)
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("a,b\n1,2\n"), Options{})
	assert.ErrorIs(t, err, errtypes.ErrShape)

	_, err = ReadCSV(strings.NewReader("label,p0\n1,2\n"), Options{})
	assert.ErrorIs(t, err, errtypes.ErrShape)

	bad := strings.Replace(csvTable(1, true), "\n0,", "\nx,", 1)
	_, err = ReadCSV(strings.NewReader(bad), Options{})
	assert.Error(t, err)
}

func TestReadIDX(t *testing.T) {
	var img, lab bytes.Buffer
	binary.Write(&img, binary.BigEndian, []uint32{idxImagesMagic, 2, ImgSize, ImgSize})
	pixels := make([]byte, 2*Pixels)
	pixels[Pixels] = 255
	img.Write(pixels)
	binary.Write(&lab, binary.BigEndian, []uint32{idxLabelsMagic, 2})
	lab.Write([]byte{7, 3})

	d, err := ReadIDX(img.Bytes(), lab.Bytes(), Options{Normalize: true})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 3}, d.Labels())
	assert.Equal(t, float32(1), d.Image(1)[0])

	_, err = ReadIDX(lab.Bytes(), lab.Bytes(), Options{})
	assert.ErrorIs(t, err, errtypes.ErrShape)
}
