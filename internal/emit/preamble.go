package emit

// preamble is the deterministic runtime prelude prepended to every emitted
// program (spec.md §4.6). It is guarded by a globalThis.__kimchi_runtime__ flag so that,
// should two compiled units ever get concatenated by a bundler, re-running
// it is a no-op.
const preamble = `if (!globalThis.__kimchi_runtime__) {
  globalThis.__kimchi_runtime__ = true;

  Object.assign(Array.prototype, {
    first() { return this[0]; },
    last() { return this[this.length - 1]; },
    isEmpty() { return this.length === 0; },
    sum() { return this.reduce((a, b) => a + b, 0); },
    product() { return this.reduce((a, b) => a * b, 1); },
    average() { return this.length === 0 ? 0 : this.sum() / this.length; },
    max() { return this.reduce((a, b) => (a > b ? a : b)); },
    min() { return this.reduce((a, b) => (a < b ? a : b)); },
    take(n) { return this.slice(0, n); },
    drop(n) { return this.slice(n); },
    flatten() { return this.flat(Infinity); },
    unique() { return [...new Set(this)]; },
  });

  Object.assign(String.prototype, {
    isEmpty() { return this.length === 0; },
    isBlank() { return this.trim().length === 0; },
    toChars() { return this.split(''); },
    toLines() { return this.split('\n'); },
    capitalize() { return this.length === 0 ? this : this[0].toUpperCase() + this.slice(1); },
  });

  globalThis._obj = {
    merge(...objs) { return Object.freeze(Object.assign({}, ...objs)); },
    keys(o) { return Object.keys(o); },
    values(o) { return Object.values(o); },
    entries(o) { return Object.entries(o); },
  };

  globalThis.error = function (message) {
    return new Error(message);
  };
  error.create = function (kind, message) {
    const e = new Error(message);
    e.kind = kind;
    return e;
  };

  class _Secret {
    constructor(value) { this._value = value; }
    toString() { return '********'; }
    valueOf() { return this._value; }
  }
  globalThis._Secret = _Secret;
  globalThis._secret = function (value) { return new _Secret(value); };

  globalThis._deepFreeze = function (value) {
    if (value && typeof value === 'object' && !Object.isFrozen(value)) {
      Object.getOwnPropertyNames(value).forEach((key) => _deepFreeze(value[key]));
      Object.freeze(value);
    }
    return value;
  };

  globalThis._shell = function (command, vars) {
    const { execSync } = require('child_process');
    const interpolated = command.replace(/\$([A-Za-z_][A-Za-z0-9_]*)/g, (_, name) => (
      name in vars ? String(vars[name]) : ''
    ));
    try {
      const stdout = execSync(interpolated, { encoding: 'utf8' });
      return { stdout, stderr: '', exitCode: 0 };
    } catch (err) {
      return { stdout: err.stdout ? err.stdout.toString() : '', stderr: err.stderr ? err.stderr.toString() : String(err), exitCode: err.status ?? 1 };
    }
  };

  const _tests = [];
  let _describeStack = [];
  globalThis._describe = function (name, fn) {
    _describeStack.push(name);
    fn();
    _describeStack.pop();
  };
  globalThis._test = function (name, fn) {
    _tests.push({ name: [..._describeStack, name].join(' > '), fn });
  };
  globalThis._expect = function (actual) {
    return {
      toBe(expected) { if (actual !== expected) throw error.create('AssertionError', 'expected ' + actual + ' to be ' + expected); },
      toEqual(expected) { if (JSON.stringify(actual) !== JSON.stringify(expected)) throw error.create('AssertionError', 'expected ' + JSON.stringify(actual) + ' to equal ' + JSON.stringify(expected)); },
      toBeTruthy() { if (!actual) throw error.create('AssertionError', 'expected ' + actual + ' to be truthy'); },
      toBeFalsy() { if (actual) throw error.create('AssertionError', 'expected ' + actual + ' to be falsy'); },
      toThrow() {
        let threw = false;
        try { actual(); } catch (e) { threw = true; }
        if (!threw) throw error.create('AssertionError', 'expected function to throw');
      },
    };
  };
  globalThis._assert = function (cond, message) {
    if (!cond) throw error.create('AssertionError', message || 'assertion failed');
  };
  globalThis._runTests = async function () {
    let passed = 0, failed = 0;
    for (const t of _tests) {
      try {
        await t.fn();
        passed++;
      } catch (e) {
        failed++;
        console.error('FAIL ' + t.name + ': ' + e.message);
      }
    }
    return { passed, failed, total: _tests.length };
  };
}
`
