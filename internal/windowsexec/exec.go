//go:build windows

package windowsexec

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/caarlos0/log"
	"golang.org/x/sys/windows"
)

var (
	shell32         = windows.NewLazySystemDLL("shell32.dll")
	procShellExecEx = shell32.NewProc("ShellExecuteExW")
)

// ErrCancelled is returned when the user dismissed the UAC prompt.
var ErrCancelled = errors.New("elevation prompt was cancelled")

// shellExecuteInfoW is the input/output struct for ShellExecuteExW.
// See: https://learn.microsoft.com/en-us/windows/win32/api/shellapi/ns-shellapi-shellexecuteinfow
type shellExecuteInfoW struct {
	cbSize         uint32
	fMask          uint32
	hwnd           windows.Handle
	lpVerb         uintptr
	lpFile         uintptr
	lpParameters   uintptr
	lpDirectory    uintptr
	nShow          int32
	hInstApp       windows.Handle
	lpIDList       uintptr
	lpClass        uintptr
	hkeyClass      windows.Handle
	dwHotKey       uint32
	hIconOrMonitor windows.Handle
	hProcess       windows.Handle
}

const (
	// SEE_MASK_NOCLOSEPROCESS (0x00000040):
	// hProcess receives the process handle; the caller closes it.
	SEE_MASK_NOCLOSEPROCESS = 0x40
	// SEE_MASK_NO_CONSOLE (0x00008000):
	// the new process gets its own console instead of inheriting ours.
	SEE_MASK_NO_CONSOLE = 0x8000
)

func shellExecuteExW(info *shellExecuteInfoW) error {
	r, _, err := procShellExecEx.Call(uintptr(unsafe.Pointer(info)))
	if r == 0 {
		if errors.Is(err, windows.ERROR_CANCELLED) {
			return ErrCancelled
		}
		return err
	}
	return nil
}

// RunAsAndWait starts file through the UAC prompt ("runas" verb) and waits
// for it to exit. The exit code of the elevated process is returned; onStart, when set,
// receives its pid as soon as it is running.
func RunAsAndWait(
	file, directory string,
	parameters []string,
	onStart func(pid int),
) (int, error) {
	lpVerb, err := windows.UTF16PtrFromString("runas")
	if err != nil {
		return -1, fmt.Errorf("converting verb to ptr: %w", err)
	}
	lpFile, err := windows.UTF16PtrFromString(file)
	if err != nil {
		return -1, fmt.Errorf("converting file to ptr: %w", err)
	}
	lpDirectory, err := windows.UTF16PtrFromString(directory)
	if err != nil {
		return -1, fmt.Errorf("converting directory to ptr: %w", err)
	}
	lpParameters, err := windows.UTF16PtrFromString(strings.Join(parameters, " "))
	if err != nil {
		return -1, fmt.Errorf("converting parameters to ptr: %w", err)
	}

	info := &shellExecuteInfoW{
		fMask:        SEE_MASK_NOCLOSEPROCESS | SEE_MASK_NO_CONSOLE,
		lpVerb:       uintptr(unsafe.Pointer(lpVerb)),
		lpFile:       uintptr(unsafe.Pointer(lpFile)),
		lpParameters: uintptr(unsafe.Pointer(lpParameters)),
		lpDirectory:  uintptr(unsafe.Pointer(lpDirectory)),
		nShow:        windows.SW_HIDE,
	}
	info.cbSize = uint32(unsafe.Sizeof(*info))

	if err := shellExecuteExW(info); err != nil {
		log.WithError(err).
			WithField("h_inst_app", info.hInstApp).
			Debug("error calling ShellExecuteExW")
		return -1, fmt.Errorf("calling ShellExecuteExW: %w", err)
	}

	if info.hProcess == 0 {
		return -1, fmt.Errorf("unexpected null hProcess handle from ShellExecuteExW")
	}
	defer windows.CloseHandle(info.hProcess) //nolint:errcheck // ignore error on close

	if onStart != nil {
		if pid, err := windows.GetProcessId(info.hProcess); err == nil {
			onStart(int(pid))
		}
	}

	w, err := windows.WaitForSingleObject(info.hProcess, windows.INFINITE)
	if err != nil {
		return -1, fmt.Errorf("waiting for elevated process: %w", err)
	}
	if w != windows.WAIT_OBJECT_0 {
		return -1, fmt.Errorf("unexpected wait result: %d", w)
	}

	var code uint32
	if err := windows.GetExitCodeProcess(info.hProcess, &code); err != nil {
		return -1, fmt.Errorf("getting exit code: %w", err)
	}

	return int(code), nil
}
