// Copyright (c) 2026 H0llyW00dzZ All rights reserved.
//
// By accessing or using this software, you agree to be bound by the terms
// of the License Agreement, which you can find at LICENSE files.

package x509inspect

import (
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"net"
	"unicode/utf16"

	"golang.org/x/crypto/cryptobyte"
	cryptobyte_asn1 "golang.org/x/crypto/cryptobyte/asn1"
)

// ErrMalformedExtension is wrapped by every decoder failure.
var ErrMalformedExtension = errors.New("x509inspect: malformed extension")

// ExtensionError reports a single extension that could not be decoded.
type ExtensionError struct {
	OID  string
	Name string
	Err  error
}

func (e *ExtensionError) Error() string {
	return fmt.Sprintf("x509inspect: failed to parse %s (%s): %v", e.Name, e.OID, e.Err)
}

func (e *ExtensionError) Unwrap() error { return e.Err }

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedExtension}, args...)...)
}

// GeneralName tags, RFC 5280 section 4.2.1.6.
var (
	tagOtherName     = cryptobyte_asn1.Tag(0).ContextSpecific().Constructed()
	tagRFC822Name    = cryptobyte_asn1.Tag(1).ContextSpecific()
	tagDNSName       = cryptobyte_asn1.Tag(2).ContextSpecific()
	tagX400Address   = cryptobyte_asn1.Tag(3).ContextSpecific().Constructed()
	tagDirectoryName = cryptobyte_asn1.Tag(4).ContextSpecific().Constructed()
	tagEDIPartyName  = cryptobyte_asn1.Tag(5).ContextSpecific().Constructed()
	tagURI           = cryptobyte_asn1.Tag(6).ContextSpecific()
	tagIPAddress     = cryptobyte_asn1.Tag(7).ContextSpecific()
	tagRegisteredID  = cryptobyte_asn1.Tag(8).ContextSpecific()
)

// DecodeSubjectAltNames decodes a Subject Alternative Name extension value
// into entries such as "DNS:example.com" or "IP:192.0.2.1", in encoding order.
func DecodeSubjectAltNames(der []byte) ([]string, error) {
	seq, err := readOuterSequence(der)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for !seq.Empty() {
		var (
			value cryptobyte.String
			tag   cryptobyte_asn1.Tag
		)
		if !seq.ReadAnyASN1(&value, &tag) {
			return nil, malformed("invalid GeneralName encoding")
		}

		name, err := formatGeneralName(tag, value)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

func formatGeneralName(tag cryptobyte_asn1.Tag, value cryptobyte.String) (string, error) {
	switch tag {
	case tagDNSName:
		return ia5Entry("DNS", value)
	case tagRFC822Name:
		return ia5Entry("email", value)
	case tagURI:
		return ia5Entry("URI", value)
	case tagIPAddress:
		if len(value) != net.IPv4len && len(value) != net.IPv6len {
			return "", malformed("IP address of length %d", len(value))
		}
		return "IP:" + net.IP(value).String(), nil
	case tagDirectoryName:
		var rdn pkix.RDNSequence
		rest, err := asn1.Unmarshal(value, &rdn)
		if err != nil || len(rest) != 0 {
			return "", malformed("invalid directoryName")
		}
		return "DirName:" + rdn.String(), nil
	case tagOtherName:
		var oid asn1.ObjectIdentifier
		if !value.ReadASN1ObjectIdentifier(&oid) {
			return "", malformed("invalid otherName type-id")
		}
		return "othername:" + oid.String(), nil
	case tagRegisteredID:
		oid, err := implicitOID(value)
		if err != nil {
			return "", err
		}
		return "registeredID:" + oid.String(), nil
	case tagX400Address:
		return "X400Name:<unsupported>", nil
	case tagEDIPartyName:
		return "EdiPartyName:<unsupported>", nil
	default:
		return "", malformed("unknown GeneralName tag %#x", uint8(tag))
	}
}

func ia5Entry(prefix string, value cryptobyte.String) (string, error) {
	for _, b := range value {
		if b > 0x7f {
			return "", malformed("%s entry is not an IA5String", prefix)
		}
	}
	return prefix + ":" + string(value), nil
}

// implicitOID re-wraps the contents of an implicitly tagged OID so cryptobyte
// can parse it with the universal tag.
func implicitOID(contents []byte) (asn1.ObjectIdentifier, error) {
	var b cryptobyte.Builder
	b.AddASN1(cryptobyte_asn1.OBJECT_IDENTIFIER, func(child *cryptobyte.Builder) {
		child.AddBytes(contents)
	})
	encoded, err := b.Bytes()
	if err != nil {
		return nil, malformed("invalid registeredID")
	}

	var oid asn1.ObjectIdentifier
	input := cryptobyte.String(encoded)
	if !input.ReadASN1ObjectIdentifier(&oid) {
		return nil, malformed("invalid registeredID")
	}
	return oid, nil
}

var extKeyUsageNames = map[string]string{
	"2.5.29.37.0":             "Any Purpose",
	"1.3.6.1.5.5.7.3.1":       "Server Authentication",
	"1.3.6.1.5.5.7.3.2":       "Client Authentication",
	"1.3.6.1.5.5.7.3.3":       "Code Signing",
	"1.3.6.1.5.5.7.3.4":       "Secure Email",
	"1.3.6.1.5.5.7.3.5":       "IP Security End System",
	"1.3.6.1.5.5.7.3.6":       "IP Security Tunnel Termination",
	"1.3.6.1.5.5.7.3.7":       "IP Security User",
	"1.3.6.1.5.5.7.3.8":       "Time Stamping",
	"1.3.6.1.5.5.7.3.9":       "OCSP Signing",
	"1.3.6.1.4.1.311.10.3.3":  "Microsoft Server Gated Crypto",
	"2.16.840.1.113730.4.1":   "Netscape Server Gated Crypto",
	"1.3.6.1.4.1.311.2.1.22":  "Microsoft Commercial Code Signing",
	"1.3.6.1.4.1.11129.2.4.4": "Certificate Transparency",
}

// DecodeExtendedKeyUsages decodes an Extended Key Usage extension value into
// friendly names. Unknown purposes are reported by dotted OID.
func DecodeExtendedKeyUsages(der []byte) ([]string, error) {
	seq, err := readOuterSequence(der)
	if err != nil {
		return nil, err
	}

	usages := []string{}
	for !seq.Empty() {
		var oid asn1.ObjectIdentifier
		if !seq.ReadASN1ObjectIdentifier(&oid) {
			return nil, malformed("invalid key purpose identifier")
		}
		usages = append(usages, oidName(oid.String(), extKeyUsageNames))
	}
	return usages, nil
}

var keyUsageNames = [...]string{
	"DigitalSignature",
	"NonRepudiation",
	"KeyEncipherment",
	"DataEncipherment",
	"KeyAgreement",
	"KeyCertSign",
	"CrlSign",
	"EncipherOnly",
	"DecipherOnly",
}

// DecodeKeyUsage decodes a Key Usage extension value into the names of the
// asserted bits, in bit order.
func DecodeKeyUsage(der []byte) ([]string, error) {
	input := cryptobyte.String(der)

	var bits asn1.BitString
	if !input.ReadASN1BitString(&bits) || !input.Empty() {
		return nil, malformed("invalid key usage bit string")
	}

	usages := []string{}
	for i, name := range keyUsageNames {
		if bits.At(i) == 1 {
			usages = append(usages, name)
		}
	}
	return usages, nil
}

var policyNames = map[string]string{
	"2.5.29.32.0":    "Any Policy",
	"2.23.140.1.1":   "Extended Validation",
	"2.23.140.1.2.1": "Domain Validated",
	"2.23.140.1.2.2": "Organization Validated",
	"2.23.140.1.2.3": "Individual Validated",
	"2.23.140.1.3":   "Extended Validation Code Signing",
}

const (
	oidQualifierCPS        = "1.3.6.1.5.5.7.2.1"
	oidQualifierUserNotice = "1.3.6.1.5.5.7.2.2"
)

// DecodeCertificatePolicies decodes a Certificate Policies extension value.
// Each entry describes one policy, e.g.
// "[1]Policy Identifier=2.23.140.1.2.1 (Domain Validated), CPS=https://example.com/cps".
func DecodeCertificatePolicies(der []byte) ([]string, error) {
	seq, err := readOuterSequence(der)
	if err != nil {
		return nil, err
	}

	policies := []string{}
	for i := 1; !seq.Empty(); i++ {
		var info cryptobyte.String
		if !seq.ReadASN1(&info, cryptobyte_asn1.SEQUENCE) {
			return nil, malformed("invalid PolicyInformation")
		}

		var oid asn1.ObjectIdentifier
		if !info.ReadASN1ObjectIdentifier(&oid) {
			return nil, malformed("invalid policy identifier")
		}

		entry := fmt.Sprintf("[%d]Policy Identifier=%s", i, oid)
		if name, ok := policyNames[oid.String()]; ok {
			entry += " (" + name + ")"
		}

		if !info.Empty() {
			qualifiers, err := decodePolicyQualifiers(&info)
			if err != nil {
				return nil, err
			}
			for _, q := range qualifiers {
				entry += ", " + q
			}
		}

		policies = append(policies, entry)
	}
	return policies, nil
}

func decodePolicyQualifiers(info *cryptobyte.String) ([]string, error) {
	var qualifiers cryptobyte.String
	if !info.ReadASN1(&qualifiers, cryptobyte_asn1.SEQUENCE) || !info.Empty() {
		return nil, malformed("invalid policy qualifiers")
	}

	var out []string
	for !qualifiers.Empty() {
		var (
			qualifier cryptobyte.String
			id        asn1.ObjectIdentifier
		)
		if !qualifiers.ReadASN1(&qualifier, cryptobyte_asn1.SEQUENCE) ||
			!qualifier.ReadASN1ObjectIdentifier(&id) {
			return nil, malformed("invalid PolicyQualifierInfo")
		}

		switch id.String() {
		case oidQualifierCPS:
			var uri cryptobyte.String
			if !qualifier.ReadASN1(&uri, cryptobyte_asn1.IA5String) {
				return nil, malformed("invalid CPS pointer")
			}
			out = append(out, "CPS="+string(uri))
		case oidQualifierUserNotice:
			text, err := userNoticeText(qualifier)
			if err != nil {
				return nil, err
			}
			if text != "" {
				out = append(out, "User Notice="+text)
			}
		default:
			out = append(out, "Qualifier="+id.String())
		}
	}
	return out, nil
}

// userNoticeText extracts explicitText from a UserNotice, skipping noticeRef.
func userNoticeText(qualifier cryptobyte.String) (string, error) {
	var notice cryptobyte.String
	if !qualifier.ReadASN1(&notice, cryptobyte_asn1.SEQUENCE) {
		return "", malformed("invalid UserNotice")
	}

	if notice.PeekASN1Tag(cryptobyte_asn1.SEQUENCE) && !notice.SkipASN1(cryptobyte_asn1.SEQUENCE) {
		return "", malformed("invalid NoticeReference")
	}
	if notice.Empty() {
		return "", nil
	}

	var (
		text cryptobyte.String
		tag  cryptobyte_asn1.Tag
	)
	if !notice.ReadAnyASN1(&text, &tag) {
		return "", malformed("invalid explicitText")
	}

	switch tag {
	case cryptobyte_asn1.UTF8String, cryptobyte_asn1.IA5String, cryptobyte_asn1.Tag(26): // VisibleString
		return string(text), nil
	case cryptobyte_asn1.Tag(30): // BMPString
		if len(text)%2 != 0 {
			return "", malformed("odd-length BMPString")
		}
		units := make([]uint16, 0, len(text)/2)
		for i := 0; i < len(text); i += 2 {
			units = append(units, uint16(text[i])<<8|uint16(text[i+1]))
		}
		return string(utf16.Decode(units)), nil
	default:
		return "", malformed("unsupported DisplayText tag %#x", uint8(tag))
	}
}

func readOuterSequence(der []byte) (cryptobyte.String, error) {
	input := cryptobyte.String(der)
	var seq cryptobyte.String
	if !input.ReadASN1(&seq, cryptobyte_asn1.SEQUENCE) {
		return nil, malformed("expected SEQUENCE")
	}
	if !input.Empty() {
		return nil, malformed("trailing data after SEQUENCE")
	}
	return seq, nil
}

func oidName(oid string, names map[string]string) string {
	if name, ok := names[oid]; ok {
		return name
	}
	return oid
}
