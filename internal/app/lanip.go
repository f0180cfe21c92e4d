package app

import "net"

// networkInterface is the part of net.Interface used to pick an address
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// networkProvider lists the host's interfaces
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type systemInterface struct {
	iface net.Interface
}

func (s systemInterface) Flags() net.Flags           { return s.iface.Flags }
func (s systemInterface) Addrs() ([]net.Addr, error) { return s.iface.Addrs() }

// systemInterfaces reads interfaces from the operating system
type systemInterfaces struct{}

func (systemInterfaces) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = systemInterface{iface: iface}
	}
	return result, nil
}

// preferredIP returns the IPv4 address phones on the same LAN can reach.
// Private addresses win over public ones; with neither it returns localhost.
func preferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var fallback net.IP
	for _, iface := range ifaces {
		if iface.Flags()&net.FlagUp == 0 || iface.Flags()&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ip := addrIP(addr).To4()
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip.IsPrivate() {
				return ip.String()
			}
			if fallback == nil {
				fallback = ip
			}
		}
	}

	if fallback != nil {
		return fallback.String()
	}
	return "localhost"
}

func addrIP(addr net.Addr) net.IP {
	switch v := addr.(type) {
	case *net.IPNet:
		return v.IP
	case *net.IPAddr:
		return v.IP
	}
	return nil
}
