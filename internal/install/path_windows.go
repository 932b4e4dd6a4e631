//go:build windows

package install

import (
	"fmt"
	"strings"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows/registry"
)

// IntegratePATH prepends binDir to the user's Path registry value, then
// broadcasts WM_SETTINGCHANGE so already-running processes (other than
// the current shell) pick up the change without a reboot (§4.4 "Windows
// user scope").
func IntegratePATH(_ string, binDir string) error {
	k, err := registry.OpenKey(registry.CURRENT_USER, "Environment", registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("install: opening user Environment key: %w", err)
	}
	defer k.Close()

	return prependPath(k, binDir)
}

// IntegrateSystemPATH modifies the machine Path value under
// HKLM\SYSTEM\CurrentControlSet\Control\Session Manager\Environment,
// requiring the process to be elevated (§4.4 "Windows system scope").
func IntegrateSystemPATH(binDir string) error {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE,
		`SYSTEM\CurrentControlSet\Control\Session Manager\Environment`,
		registry.QUERY_VALUE|registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("install: opening machine Environment key: %w", err)
	}
	defer k.Close()

	return prependPath(k, binDir)
}

func prependPath(k registry.Key, binDir string) error {
	current, _, err := k.GetStringValue("Path")
	if err != nil && err != registry.ErrNotExist {
		return fmt.Errorf("install: reading Path value: %w", err)
	}
	for _, existing := range strings.Split(current, ";") {
		if strings.EqualFold(existing, binDir) {
			return nil // already present
		}
	}
	newPath := binDir
	if current != "" {
		newPath = binDir + ";" + current
	}
	if err := k.SetStringValue("Path", newPath); err != nil {
		return fmt.Errorf("install: writing Path value: %w", err)
	}
	broadcastEnvironmentChange()
	return nil
}

const (
	hwndBroadcast   = 0xffff
	wmSettingChange = 0x001A
	smtoAbortIfHung = 0x0002
)

// broadcastEnvironmentChange notifies top-level windows that the
// environment changed, the same mechanism Explorer uses after a manual
// PATH edit, so new processes inherit it without a logoff.
func broadcastEnvironmentChange() {
	user32 := syscall.NewLazyDLL("user32.dll")
	sendMessageTimeout := user32.NewProc("SendMessageTimeoutW")
	param, _ := syscall.UTF16PtrFromString("Environment")
	var result uintptr
	sendMessageTimeout.Call(
		uintptr(hwndBroadcast),
		uintptr(wmSettingChange),
		0,
		uintptr(unsafe.Pointer(param)),
		uintptr(smtoAbortIfHung),
		uintptr(5000),
		uintptr(unsafe.Pointer(&result)),
	)
}
