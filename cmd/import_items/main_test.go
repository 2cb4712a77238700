package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/jhoicas/aikasir-api/internal/domain/money"
)

func TestParseItems_Windows1252(t *testing.T) {
	src := "nama;harga;stok;lacak;batas\nCafé Latte;Rp 18.000;12;true;3\nKantong plastik;500;0;false;\n"
	raw, err := charmap.Windows1252.NewEncoder().Bytes([]byte(src))
	require.NoError(t, err)

	r, err := decoder(bytes.NewReader(raw), "windows-1252")
	require.NoError(t, err)
	items, err := parseItems(r, ';')
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, "Café Latte", items[0].Name)
	assert.Equal(t, money.Amount(18000), items[0].Price)
	assert.Equal(t, 12, items[0].Stock)
	assert.True(t, items[0].TrackStock)
	require.NotNil(t, items[0].LowStockThreshold)
	assert.Equal(t, 3, *items[0].LowStockThreshold)

	assert.False(t, items[1].TrackStock)
	assert.Nil(t, items[1].LowStockThreshold)
}

func TestParseItems_Errores(t *testing.T) {
	cases := map[string]string{
		"precio negativo": "n;p;s\nTeh;-5;1\n",
		"stock texto":     "n;p;s\nTeh;5000;banyak\n",
		"nombre vacío":    "n;p;s\n ;5000;1\n",
		"pocas columnas":  "n;p;s\nTeh;5000\n",
	}
	for name, src := range cases {
		_, err := parseItems(strings.NewReader(src), ';')
		assert.Error(t, err, name)
	}
}

func TestParseItems_SoloCabecera(t *testing.T) {
	items, err := parseItems(strings.NewReader("n;p;s\n"), ';')
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecoder_CodificacionDesconocida(t *testing.T) {
	_, err := decoder(strings.NewReader(""), "ebcdic")
	assert.Error(t, err)
}
