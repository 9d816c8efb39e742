package types

import (
	"bytes"
	"encoding/binary"
	"net/netip"
	"testing"
)

func testStateid() Stateid4 {
	return Stateid4{
		Seqid: 7,
		Other: [NFS4_OTHER_SIZE]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12},
	}
}

func TestStateid4_RoundTrip(t *testing.T) {
	sid := testStateid()
	var buf bytes.Buffer
	EncodeStateid4(&buf, &sid)
	if buf.Len() != 16 {
		t.Fatalf("encoded length: got %d, want 16", buf.Len())
	}
	decoded, err := DecodeStateid4(&buf)
	if err != nil {
		t.Fatalf("DecodeStateid4: %v", err)
	}
	if *decoded != sid {
		t.Errorf("got %v, want %v", *decoded, sid)
	}
}

func TestLayoutGetArgs_RoundTrip(t *testing.T) {
	original := LayoutGetArgs{
		Signal:     true,
		LayoutType: LAYOUT4_NFSV4_1_FILES,
		IOMode:     LAYOUTIOMODE4_RW,
		Offset:     4096,
		Length:     NFS4_UINT64_MAX,
		MinLength:  1,
		Stateid:    testStateid(),
		MaxCount:   4096,
	}
	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded LayoutGetArgs
	if err := decoded.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != original {
		t.Errorf("got %+v, want %+v", decoded, original)
	}
}

func TestLayoutGetArgs_Truncated(t *testing.T) {
	var buf bytes.Buffer
	args := LayoutGetArgs{IOMode: LAYOUTIOMODE4_READ}
	if err := args.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	truncated := bytes.NewReader(buf.Bytes()[:buf.Len()-2])
	var decoded LayoutGetArgs
	if err := decoded.Decode(truncated); err == nil {
		t.Fatal("expected error for truncated args")
	}
}

func TestLayoutGetRes_EncodeOK(t *testing.T) {
	res := LayoutGetRes{
		Status:        NFS4_OK,
		ReturnOnClose: true,
		Stateid:       testStateid(),
		Layouts: []Layout4{{
			Offset: 0,
			Length: NFS4_UINT64_MAX,
			IOMode: LAYOUTIOMODE4_READ,
			Type:   LAYOUT4_NFSV4_1_FILES,
			Body:   []byte{0xaa, 0xbb, 0xcc},
		}},
	}
	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// status + bool + stateid + count + (8+8+4+4+4+4)
	want := 4 + 4 + 16 + 4 + 8 + 8 + 4 + 4 + 4 + 4
	if buf.Len() != want {
		t.Fatalf("encoded length: got %d, want %d", buf.Len(), want)
	}
	b := buf.Bytes()
	if got := binary.BigEndian.Uint32(b[24:28]); got != 1 {
		t.Errorf("layout count: got %d, want 1", got)
	}
}

func TestLayoutGetRes_EncodeTryLater(t *testing.T) {
	res := LayoutGetRes{Status: NFS4ERR_LAYOUTTRYLATER, WillSignal: false}
	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != 8 {
		t.Fatalf("encoded length: got %d, want 8", buf.Len())
	}
	if got := binary.BigEndian.Uint32(buf.Bytes()); got != NFS4ERR_LAYOUTTRYLATER {
		t.Errorf("status: got %d", got)
	}
}

func TestLayoutGetRes_EncodeOtherError(t *testing.T) {
	res := LayoutGetRes{Status: NFS4ERR_RESOURCE}
	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != 4 {
		t.Errorf("encoded length: got %d, want 4", buf.Len())
	}
}

func TestLayoutReturnArgs_RoundTrip_File(t *testing.T) {
	original := LayoutReturnArgs{
		LayoutType: LAYOUT4_NFSV4_1_FILES,
		IOMode:     LAYOUTIOMODE4_RW,
		ReturnType: LAYOUTRETURN4_FILE,
		Length:     1048576,
		Stateid:    testStateid(),
		Body:       []byte{0xde, 0xad},
	}
	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded LayoutReturnArgs
	if err := decoded.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.Stateid != original.Stateid {
		t.Errorf("Stateid: got %v, want %v", decoded.Stateid, original.Stateid)
	}
	if decoded.Length != original.Length {
		t.Errorf("Length: got %d, want %d", decoded.Length, original.Length)
	}
	if !bytes.Equal(decoded.Body, original.Body) {
		t.Errorf("Body: got %x, want %x", decoded.Body, original.Body)
	}
}

func TestLayoutReturnArgs_RoundTrip_All(t *testing.T) {
	original := LayoutReturnArgs{
		Reclaim:    true,
		LayoutType: LAYOUT4_NFSV4_1_FILES,
		IOMode:     LAYOUTIOMODE4_ANY,
		ReturnType: LAYOUTRETURN4_ALL,
	}
	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != 16 {
		t.Fatalf("encoded length: got %d, want 16", buf.Len())
	}
	var decoded LayoutReturnArgs
	if err := decoded.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !decoded.Reclaim || decoded.ReturnType != LAYOUTRETURN4_ALL {
		t.Errorf("got %+v", decoded)
	}
}

func TestLayoutReturnRes_Encode(t *testing.T) {
	var buf bytes.Buffer
	res := LayoutReturnRes{Status: NFS4_OK}
	if err := res.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != 8 {
		t.Errorf("no stateid: got %d bytes, want 8", buf.Len())
	}

	buf.Reset()
	res = LayoutReturnRes{Status: NFS4_OK, StateidPresent: true, Stateid: testStateid()}
	if err := res.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != 24 {
		t.Errorf("with stateid: got %d bytes, want 24", buf.Len())
	}
}

func TestGetDeviceInfoArgs_RoundTrip(t *testing.T) {
	original := GetDeviceInfoArgs{
		DeviceID:    DeviceId4{'4', '2'},
		LayoutType:  LAYOUT4_NFSV4_1_FILES,
		MaxCount:    8192,
		NotifyTypes: Bitmap4{0x6},
	}
	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded GetDeviceInfoArgs
	if err := decoded.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.DeviceID != original.DeviceID || decoded.MaxCount != original.MaxCount {
		t.Errorf("got %+v, want %+v", decoded, original)
	}
	if len(decoded.NotifyTypes) != 1 || decoded.NotifyTypes[0] != 0x6 {
		t.Errorf("NotifyTypes: got %v", decoded.NotifyTypes)
	}
}

func TestGetDeviceInfoRes_TooSmall(t *testing.T) {
	res := GetDeviceInfoRes{Status: NFS4ERR_TOOSMALL, MinCount: 64}
	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b := buf.Bytes()
	if len(b) != 8 || binary.BigEndian.Uint32(b[4:]) != 64 {
		t.Errorf("got %x", b)
	}
}

func TestGetDeviceListArgs_RoundTrip(t *testing.T) {
	original := GetDeviceListArgs{
		LayoutType: LAYOUT4_NFSV4_1_FILES,
		MaxDevices: 16,
		Cookie:     3,
		CookieVerf: Verifier4{1, 2, 3, 4, 5, 6, 7, 8},
	}
	var buf bytes.Buffer
	if err := original.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var decoded GetDeviceListArgs
	if err := decoded.Decode(&buf); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded != original {
		t.Errorf("got %+v, want %+v", decoded, original)
	}
}

func TestGetDeviceListRes_Encode(t *testing.T) {
	res := GetDeviceListRes{
		Status:    NFS4_OK,
		Cookie:    2,
		DeviceIDs: []DeviceId4{{'1'}, {'2'}},
		EOF:       true,
	}
	var buf bytes.Buffer
	if err := res.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// status + cookie + verf + count + 2*16 + eof
	if want := 4 + 8 + 8 + 4 + 32 + 4; buf.Len() != want {
		t.Errorf("encoded length: got %d, want %d", buf.Len(), want)
	}
}

func TestNewNetAddr4(t *testing.T) {
	tests := []struct {
		name      string
		addr      string
		wantNetid string
		wantAddr  string
	}{
		{"ipv4", "192.168.1.5:2049", "tcp", "192.168.1.5.8.1"},
		{"ipv4-mapped", "[::ffff:10.0.0.1]:20049", "tcp", "10.0.0.1.78.81"},
		{"ipv6", "[fe80::1]:2049", "tcp6", "fe80::1.8.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			na := NewNetAddr4(netip.MustParseAddrPort(tt.addr))
			if na.Netid != tt.wantNetid {
				t.Errorf("Netid: got %q, want %q", na.Netid, tt.wantNetid)
			}
			if na.Addr != tt.wantAddr {
				t.Errorf("Addr: got %q, want %q", na.Addr, tt.wantAddr)
			}
		})
	}
}

func TestFileLayoutDSAddr4_Encode(t *testing.T) {
	var buf bytes.Buffer
	if err := NewSingleDSAddr(netip.MustParseAddrPort("10.0.0.1:2049")).Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	b := buf.Bytes()
	// stripe indices <1>{0}, multipath list <1>, netaddr list <1>
	if binary.BigEndian.Uint32(b[0:4]) != 1 || binary.BigEndian.Uint32(b[4:8]) != 0 {
		t.Fatalf("stripe indices: got %x", b[:8])
	}
	if binary.BigEndian.Uint32(b[8:12]) != 1 || binary.BigEndian.Uint32(b[12:16]) != 1 {
		t.Fatalf("multipath counts: got %x", b[8:16])
	}
	if netidLen := binary.BigEndian.Uint32(b[16:20]); netidLen != 3 || string(b[20:23]) != "tcp" {
		t.Errorf("netid: got %x", b[16:24])
	}
}

func TestFileLayout4_Encode(t *testing.T) {
	l := FileLayout4{
		DeviceID: DeviceId4{'1'},
		Util:     NflUtil(1<<20, 0),
		FhList:   [][]byte{{1, 2, 3}},
	}
	var buf bytes.Buffer
	if err := l.Encode(&buf); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	// deviceid + util + first index + pattern offset + count + fh(4+3+1)
	if want := 16 + 4 + 4 + 8 + 4 + 8; buf.Len() != want {
		t.Fatalf("encoded length: got %d, want %d", buf.Len(), want)
	}
	if got := binary.BigEndian.Uint32(buf.Bytes()[16:20]); got != 1<<20 {
		t.Errorf("nfl_util: got %#x", got)
	}
}

func TestNflUtil(t *testing.T) {
	if got := NflUtil(1<<20, NFL4_UFLG_DENSE|NFL4_UFLG_COMMIT_THRU_MDS); got != 1<<20|3 {
		t.Errorf("got %#x", got)
	}
	if got := NflUtil(65, 0); got != 64 {
		t.Errorf("stripe unit not masked: got %d", got)
	}
}

func TestChallengeStateid_RoundTrip(t *testing.T) {
	sid := testStateid()
	got, err := DecodeChallengeStateid(EncodeChallengeStateid(sid))
	if err != nil {
		t.Fatalf("DecodeChallengeStateid: %v", err)
	}
	if got != sid {
		t.Errorf("got %v, want %v", got, sid)
	}
	if _, err := DecodeChallengeStateid([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for short challenge")
	}
}

func TestParseStateid4(t *testing.T) {
	sid := testStateid()
	got, err := ParseStateid4(sid.String())
	if err != nil {
		t.Fatalf("ParseStateid4: %v", err)
	}
	if got != sid {
		t.Errorf("got %v, want %v", got, sid)
	}

	for _, bad := range []string{"", "7", "x:0102", "7:0102", "7:zz0102030405060708090a0b"} {
		if _, err := ParseStateid4(bad); err == nil {
			t.Errorf("ParseStateid4(%q): expected error", bad)
		}
	}
}

func TestOpNameAndIOModeName(t *testing.T) {
	if OpName(OP_LAYOUTGET) != "LAYOUTGET" || OpName(999) != "UNKNOWN" {
		t.Error("OpName mismatch")
	}
	if IOModeName(LAYOUTIOMODE4_RW) != "RW" || IOModeName(0) != "UNKNOWN" {
		t.Error("IOModeName mismatch")
	}
}
