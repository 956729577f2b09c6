package wallet

import (
	"sort"

	"github.com/samber/lo"
)

// Directory maps sensor ids onto their reward wallet addresses. It is
// immutable once constructed and safe for concurrent reads without locking.
type Directory struct {
	entries map[string]string
}

func NewDirectory(entries map[string]string) *Directory {
	copied := make(map[string]string, len(entries))
	for sensorID, address := range entries {
		copied[sensorID] = address
	}
	return &Directory{entries: copied}
}

// Lookup returns the wallet address for a sensor. A missing entry is a valid
// state, not an error.
func (d *Directory) Lookup(sensorID string) (string, bool) {
	address, ok := d.entries[sensorID]
	return address, ok
}

// SensorIDs returns every configured sensor id in a stable order.
func (d *Directory) SensorIDs() []string {
	ids := lo.Keys(d.entries)
	sort.Strings(ids)
	return ids
}

func (d *Directory) Len() int {
	return len(d.entries)
}

// Default is the directory for the deployed sensor fleet.
func Default() *Directory {
	return NewDirectory(map[string]string{
		"sensor-tmp-1": "0x70997970C51812dc3A010C7d01b50e0d17dc79C8",
		"sensor-tmp-2": "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC",
		"sensor-tmp-3": "0x90F79bf6EB2c4f870365E785982E1f101E93b906",
		"sensor-tmp-4": "0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65",
		"sensor-hum-1": "0x9965507D1a55bcC2695C58ba16FB37d819B0A4dc",
		"sensor-hum-2": "0x976EA74026E726554dB657fA54763abd0C3a0aa9",
		"sensor-hum-3": "0x14dC79964da2C08b23698B3D3cc7Ca32193d9955",
		"sensor-hum-4": "0x23618e81E3f5cdF7f54C3d65f7FBc0aBf5B21E8f",
		"sensor-sun-1": "0xa0Ee7A142d267C1f36714E4a8F75612F20a79720",
		"sensor-sun-2": "0xBcd4042DE499D14e55001CcbB24a551F3b954096",
		"sensor-sun-3": "0x71bE63f3384f5fb98995898A86B02Fb2426c5788",
		"sensor-sun-4": "0xFABB0ac9d68B0B445fB7357272Ff202C5651694a",
		"sensor-co2-1": "0x1CBd3b2770909D4e10f157cABC84C7264073C9Ec",
		"sensor-co2-2": "0xdF3e18d64BC6A983f673Ab319CCaE4f1a57C7097",
		"sensor-co2-3": "0xcd3B766CCDd6AE721141F452C550Ca635964ce71",
		"sensor-co2-4": "0x2546BcD3c84621e976D8185a91A922aE77ECEc30",
	})
}
